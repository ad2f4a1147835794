package safeweb

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateURL_Schemes(t *testing.T) {
	// WHAT: Only http/https schemes are accepted.
	// WHY: file://, gopher:// etc. open SSRF and local file disclosure.
	for _, raw := range []string{"ftp://example.com/x", "file:///etc/passwd", "gopher://example.com"} {
		if err := ValidateURL(raw); !errors.Is(err, ErrUnsafeScheme) {
			t.Errorf("%s: want ErrUnsafeScheme, got %v", raw, err)
		}
	}
	if err := ValidateURL("https://example.com/table.html"); err != nil {
		t.Errorf("https URL rejected: %v", err)
	}
}

func TestValidateURL_PrivateIPs(t *testing.T) {
	// WHAT: Literal private/loopback IPs are rejected.
	// WHY: Core SSRF guard for user-supplied example URLs.
	for _, raw := range []string{
		"http://127.0.0.1/metadata",
		"http://10.1.2.3/x",
		"http://192.168.1.1/x",
		"http://172.16.0.1/x",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]/x",
	} {
		if err := ValidateURL(raw); !errors.Is(err, ErrSSRF) {
			t.Errorf("%s: want ErrSSRF, got %v", raw, err)
		}
	}
}

func TestValidateURL_NoHost(t *testing.T) {
	// WHAT: URLs without a hostname are rejected.
	if err := ValidateURL("http:///path-only"); err == nil {
		t.Error("hostless URL accepted")
	}
}

func TestValidateIdentifier(t *testing.T) {
	// WHAT: Identifier charset and length rules.
	// WHY: Dataset names become URL path segments and FTS terms.
	valid := []string{"mnist", "berkeley_mhad", "robo-set.v2", "QM9"}
	for _, s := range valid {
		if err := ValidateIdentifier(s); err != nil {
			t.Errorf("%q rejected: %v", s, err)
		}
	}
	invalid := []string{"", "a b", "x/y", "semi;colon", strings.Repeat("a", 257)}
	for _, s := range invalid {
		if err := ValidateIdentifier(s); err == nil {
			t.Errorf("%q accepted", s)
		}
	}
}

func TestValidateSecret(t *testing.T) {
	// WHAT: Secrets shorter than 32 bytes are rejected.
	if err := ValidateSecret(make([]byte, 31)); !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("short secret: got %v", err)
	}
	if err := ValidateSecret(make([]byte, 32)); err != nil {
		t.Errorf("32-byte secret rejected: %v", err)
	}
}

func TestLimitedReadAll(t *testing.T) {
	// WHAT: Reads under the cap succeed; over the cap fail with the sentinel.
	data, err := LimitedReadAll(strings.NewReader("hello"), 10)
	if err != nil || string(data) != "hello" {
		t.Fatalf("under cap: %q, %v", data, err)
	}
	if _, err := LimitedReadAll(strings.NewReader("hello world"), 5); !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("over cap: got %v", err)
	}
}

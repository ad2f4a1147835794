// CLAUDE:SUMMARY Entry point for the datacat HTTP service — chi router, JWT auth, optional MCP stdio.
package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/framehub/datacat/auth"
	"github.com/framehub/datacat/catalog"
	"github.com/framehub/datacat/catalog/seed"
	"github.com/framehub/datacat/datasheet"
	"github.com/framehub/datacat/dbopen"
	"github.com/framehub/datacat/idgen"
	"github.com/framehub/datacat/shield"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// sessionTTL bounds both the JWT expiry and the cookie carrying it.
const sessionTTL = 30 * 24 * time.Hour

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = LoadConfig(*configPath)
		if err != nil {
			slog.Error("config", "error", err)
			os.Exit(1)
		}
	}
	cfg.applyEnv()

	if cfg.JWTSecret == "" {
		slog.Error("jwt_secret (or SESSION_SECRET) is required")
		os.Exit(1)
	}
	// Derive a fixed-size JWT secret regardless of input length.
	secretHash := sha256.Sum256([]byte(cfg.JWTSecret))
	jwtSecret := secretHash[:]

	// Logging.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logOut := io.Writer(os.Stdout)
	if cfg.MCPTransport == "stdio" {
		// stdout carries the MCP stream; logs must not corrupt it.
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll(), dbopen.WithSchema(usersSchema))
	if err != nil {
		slog.Error("open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := catalog.ApplySchema(db); err != nil {
		slog.Error("apply schema", "error", err)
		os.Exit(1)
	}

	// Seed admin user if no admin exists.
	if err := seedAdmin(ctx, db); err != nil {
		slog.Error("seed admin", "error", err)
		os.Exit(1)
	}

	// Catalog service.
	svcCfg := &catalog.Config{
		WatchInterval: time.Duration(cfg.Watch.IntervalMS) * time.Millisecond,
		WatchDebounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
	}
	svcCfg.Fetch.Timeout = time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second
	svcCfg.Fetch.MaxBytes = int64(cfg.Fetch.MaxBytesMB) * 1024 * 1024
	svcCfg.Fetch.UserAgent = cfg.Fetch.UserAgent

	svc, err := catalog.New(db, svcCfg, logger)
	if err != nil {
		slog.Error("catalog service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()
	svc.Start(ctx)

	// Seed built-in collections when the catalog is empty.
	if len(cfg.SeedCollections) > 0 {
		seedCollections(ctx, svc, cfg.SeedCollections)
	}

	// MCP stdio mode: the process speaks MCP instead of serving HTTP.
	if cfg.MCPTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "datacat",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)
		slog.Info("MCP stdio starting")
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	users := &userService{db: db}

	// Router.
	r := chi.NewRouter()
	for _, mw := range shield.DefaultStack() {
		r.Use(mw)
	}
	r.Use(auth.Middleware(jwtSecret)) // Parse JWT on all routes (soft — doesn't enforce).

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public auth endpoints (no session required).
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, err)
			return
		}
		claims, err := users.authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			writeJSON(w, 401, map[string]string{"error": "invalid credentials"})
			return
		}
		token, err := auth.GenerateToken(jwtSecret, claims, sessionTTL)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
		auth.SetTokenCookie(w, token, secure, sessionTTL)
		writeJSON(w, 200, map[string]string{"id": claims.UserID, "name": claims.Username, "role": claims.Role})
	})

	r.Post("/api/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		auth.ClearTokenCookie(w)
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public catalog reads.
	r.Get("/api/datasets", func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 100)
		offset := queryInt(r, "offset", 0)
		list, err := svc.ListDatasets(r.Context(), limit, offset)
		if err != nil {
			writeSvcError(w, err)
			return
		}
		if list == nil {
			list = []*catalog.Dataset{}
		}
		writeJSON(w, 200, list)
	})

	r.Get("/api/datasets/{id}", func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.GetDataset(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSvcError(w, err)
			return
		}
		writeJSON(w, 200, d)
	})

	r.Get("/api/datasets/{id}/page", func(w http.ResponseWriter, r *http.Request) {
		md, err := svc.Page(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSvcError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(200)
		fmt.Fprint(w, md)
	})

	r.Get("/api/datasets/{id}/features", func(w http.ResponseWriter, r *http.Request) {
		feats, err := svc.Features(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSvcError(w, err)
			return
		}
		if feats == nil {
			feats = []*catalog.Feature{}
		}
		writeJSON(w, 200, feats)
	})

	// Example surface: current state of the deferred example area.
	r.Get("/api/datasets/{id}/example", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, svc.ExampleState(chi.URLParam(r, "id")))
	})

	// Trigger the one-shot example load. The response carries the settled
	// surface: the page verbatim, or the fixed error text.
	r.Post("/api/datasets/{id}/example/load", func(w http.ResponseWriter, r *http.Request) {
		surface, err := svc.LoadExample(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSvcError(w, err)
			return
		}
		writeJSON(w, 200, surface)
	})

	r.Get("/api/datasets/{id}/example/markdown", func(w http.ResponseWriter, r *http.Request) {
		md, err := svc.ExampleMarkdown(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeSvcError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(200)
		fmt.Fprint(w, md)
	})

	r.Get("/api/datasets/{id}/fetch-history", func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 50)
		hist, err := svc.FetchHistory(r.Context(), chi.URLParam(r, "id"), limit)
		if err != nil {
			writeSvcError(w, err)
			return
		}
		if hist == nil {
			hist = []*catalog.FetchLogEntry{}
		}
		writeJSON(w, 200, hist)
	})

	r.Get("/api/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			writeJSON(w, 400, map[string]string{"error": "q is required"})
			return
		}
		limit := queryInt(r, "limit", 20)
		results, err := svc.Search(r.Context(), q, limit)
		if err != nil {
			writeSvcError(w, err)
			return
		}
		if results == nil {
			results = []*catalog.SearchResult{}
		}
		writeJSON(w, 200, results)
	})

	r.Get("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			writeSvcError(w, err)
			return
		}
		writeJSON(w, 200, stats)
	})

	// Authenticated session info.
	r.Group(func(r chi.Router) {
		r.Use(requireSession)

		r.Get("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
			c := auth.GetClaims(r.Context())
			writeJSON(w, 200, map[string]string{"id": c.UserID, "name": c.Username, "role": c.Role})
		})
	})

	// Admin: catalog mutations.
	r.Group(func(r chi.Router) {
		r.Use(requireSession, requireAdmin)

		r.Post("/api/datasets", func(w http.ResponseWriter, r *http.Request) {
			var req datasetRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			d := req.dataset("")
			if err := svc.AddDataset(r.Context(), d, req.features("")); err != nil {
				writeSvcError(w, err)
				return
			}
			writeJSON(w, 201, d)
		})

		r.Put("/api/datasets/{id}", func(w http.ResponseWriter, r *http.Request) {
			var req datasetRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			d := req.dataset(chi.URLParam(r, "id"))
			if err := svc.UpdateDataset(r.Context(), d); err != nil {
				writeSvcError(w, err)
				return
			}
			writeJSON(w, 200, d)
		})

		r.Delete("/api/datasets/{id}", func(w http.ResponseWriter, r *http.Request) {
			if err := svc.DeleteDataset(r.Context(), chi.URLParam(r, "id")); err != nil {
				writeSvcError(w, err)
				return
			}
			writeJSON(w, 200, map[string]string{"status": "deleted"})
		})

		r.Put("/api/datasets/{id}/features", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Features []featureRequest `json:"features"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			id := chi.URLParam(r, "id")
			feats := make([]*catalog.Feature, 0, len(req.Features))
			for _, f := range req.Features {
				feats = append(feats, f.feature(id))
			}
			if err := svc.SetFeatures(r.Context(), id, feats); err != nil {
				writeSvcError(w, err)
				return
			}
			writeJSON(w, 200, map[string]string{"status": "ok"})
		})

		// Datasheet import: parse an uploaded PDF or HTML documentation file
		// and optionally backfill an existing dataset's empty fields from it.
		r.Post("/api/admin/datasheets/import", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(64 << 20); err != nil {
				writeError(w, 400, err)
				return
			}
			file, hdr, err := r.FormFile("file")
			if err != nil {
				writeError(w, 400, err)
				return
			}
			defer file.Close()

			if _, err := datasheet.DetectFormat(hdr.Filename); err != nil {
				writeError(w, 400, err)
				return
			}
			tmp, err := os.CreateTemp("", "datasheet-*"+filepath.Ext(hdr.Filename))
			if err != nil {
				writeError(w, 500, err)
				return
			}
			defer os.Remove(tmp.Name())
			if _, err := io.Copy(tmp, file); err != nil {
				tmp.Close()
				writeError(w, 500, err)
				return
			}
			tmp.Close()

			doc, err := datasheet.Parse(tmp.Name())
			if err != nil {
				writeError(w, 422, err)
				return
			}

			var featureRows []datasheet.FeatureRow
			if doc.Format == datasheet.FormatHTML {
				if data, err := os.ReadFile(tmp.Name()); err == nil {
					featureRows, _ = datasheet.ExtractFeatureRows(data)
				}
			}

			resp := map[string]any{
				"title":       doc.Title,
				"format":      doc.Format,
				"sections":    len(doc.Sections),
				"description": doc.Description(),
				"citation":    doc.Citation(),
				"features":    featureRows,
			}
			if doc.Quality != nil {
				resp["quality"] = doc.Quality
				resp["needs_ocr"] = doc.Quality.NeedsOCR()
			}

			if datasetID := r.URL.Query().Get("dataset_id"); datasetID != "" {
				applied, err := backfillDataset(r.Context(), svc, datasetID, doc, featureRows)
				if err != nil {
					writeSvcError(w, err)
					return
				}
				resp["applied"] = applied
			}
			writeJSON(w, 200, resp)
		})

		r.Post("/api/admin/seed/{collection}", func(w http.ResponseWriter, r *http.Request) {
			collection := chi.URLParam(r, "collection")
			n, err := seed.Populate(r.Context(), addFromSeed(svc), collection)
			if err != nil {
				writeError(w, 400, err)
				return
			}
			writeJSON(w, 200, map[string]int{"inserted": n})
		})

		r.Get("/api/admin/search-log", func(w http.ResponseWriter, r *http.Request) {
			limit := queryInt(r, "limit", 100)
			entries, err := svc.SearchLog(r.Context(), limit)
			if err != nil {
				writeSvcError(w, err)
				return
			}
			if entries == nil {
				entries = []catalog.SearchLogEntry{}
			}
			writeJSON(w, 200, entries)
		})

		r.Get("/api/admin/watch-stats", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 200, svc.WatchStats())
		})

		// User management.
		r.Route("/api/admin/users", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				list, err := users.list(r.Context())
				if err != nil {
					writeError(w, 500, err)
					return
				}
				writeJSON(w, 200, list)
			})

			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				var req struct {
					Username string `json:"username"`
					Password string `json:"password"`
					Role     string `json:"role"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					writeError(w, 400, err)
					return
				}
				if req.Role == "" {
					req.Role = "user"
				}
				user, err := users.create(r.Context(), req.Username, req.Password, req.Role)
				if err != nil {
					writeError(w, 400, err)
					return
				}
				writeJSON(w, 201, user)
			})

			r.Delete("/{userID}", func(w http.ResponseWriter, r *http.Request) {
				if err := users.delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
					writeError(w, 500, err)
					return
				}
				writeJSON(w, 200, map[string]string{"status": "deleted"})
			})
		})
	})

	// HTTP server.
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// --- Request payloads ---

type featureRequest struct {
	Name  string `json:"name"`
	Dtype string `json:"dtype"`
	Shape string `json:"shape"`
	Split string `json:"split"`
}

func (f featureRequest) feature(datasetID string) *catalog.Feature {
	return &catalog.Feature{
		DatasetID: datasetID,
		Name:      f.Name,
		Dtype:     f.Dtype,
		ShapeJSON: f.Shape,
		Split:     f.Split,
	}
}

type datasetRequest struct {
	Name        string           `json:"name"`
	Version     string           `json:"version"`
	Description string           `json:"description"`
	Homepage    string           `json:"homepage"`
	Citation    string           `json:"citation"`
	ExampleURL  string           `json:"example_url"`
	ConfigJSON  string           `json:"config_json"`
	Features    []featureRequest `json:"features"`
}

func (req datasetRequest) dataset(id string) *catalog.Dataset {
	return &catalog.Dataset{
		ID:          id,
		Name:        req.Name,
		Version:     req.Version,
		Description: req.Description,
		Homepage:    req.Homepage,
		Citation:    req.Citation,
		ExampleURL:  req.ExampleURL,
		ConfigJSON:  req.ConfigJSON,
	}
}

func (req datasetRequest) features(datasetID string) []*catalog.Feature {
	feats := make([]*catalog.Feature, 0, len(req.Features))
	for _, f := range req.Features {
		feats = append(feats, f.feature(datasetID))
	}
	return feats
}

// backfillDataset fills the dataset's empty description/citation from a
// parsed datasheet and installs the extracted feature schema when the
// dataset has none. Populated fields are never overwritten.
func backfillDataset(ctx context.Context, svc *catalog.Service, datasetID string, doc *datasheet.Document, rows []datasheet.FeatureRow) ([]string, error) {
	d, err := svc.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	applied := []string{}
	if d.Description == "" {
		if desc := doc.Description(); desc != "" {
			d.Description = desc
			applied = append(applied, "description")
		}
	}
	if d.Citation == "" {
		if cit := doc.Citation(); cit != "" {
			d.Citation = cit
			applied = append(applied, "citation")
		}
	}
	if len(applied) > 0 {
		if err := svc.UpdateDataset(ctx, d); err != nil {
			return nil, err
		}
	}

	if len(rows) > 0 {
		existing, err := svc.Features(ctx, datasetID)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			feats := make([]*catalog.Feature, 0, len(rows))
			for _, row := range rows {
				feats = append(feats, &catalog.Feature{
					DatasetID: datasetID,
					Name:      row.Name,
					Dtype:     row.Dtype,
					ShapeJSON: shapeToJSON(row.Shape),
				})
			}
			if err := svc.SetFeatures(ctx, datasetID, feats); err != nil {
				return nil, err
			}
			applied = append(applied, "features")
		}
	}
	return applied, nil
}

// shapeToJSON converts a datasheet shape like "(256, 320, 3)" to a JSON
// array string. Scalar shapes "()" become "[]".
func shapeToJSON(shape string) string {
	s := strings.TrimSpace(shape)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSuffix(strings.TrimSpace(s), ",")
	if s == "" {
		return "[]"
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// --- Seeding ---

func addFromSeed(svc *catalog.Service) func(ctx context.Context, in *seed.DatasetInput) error {
	return func(ctx context.Context, in *seed.DatasetInput) error {
		d := &catalog.Dataset{
			Name:        in.Name,
			Version:     in.Version,
			Description: in.Description,
			Homepage:    in.Homepage,
			Citation:    in.Citation,
			ExampleURL:  in.ExampleURL,
		}
		feats := make([]*catalog.Feature, 0, len(in.Features))
		for _, f := range in.Features {
			feats = append(feats, &catalog.Feature{
				Name:      f.Name,
				Dtype:     f.Dtype,
				ShapeJSON: f.Shape,
				Split:     f.Split,
			})
		}
		return svc.AddDataset(ctx, d, feats)
	}
}

func seedCollections(ctx context.Context, svc *catalog.Service, collections []string) {
	stats, err := svc.Stats(ctx)
	if err != nil {
		slog.Error("seed: stats", "error", err)
		return
	}
	if stats.Datasets > 0 {
		return
	}
	for _, c := range collections {
		n, err := seed.Populate(ctx, addFromSeed(svc), c)
		if err != nil {
			slog.Error("seed collection", "collection", c, "error", err)
			continue
		}
		slog.Info("seeded collection", "collection", c, "datasets", n)
	}
}

// --- Auth middleware ---

// requireSession returns 401 JSON if no valid JWT claims in context.
// Used on API routes. auth.Middleware (applied globally) does the soft parsing.
func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetClaims(r.Context()) == nil {
			writeJSON(w, 401, map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := auth.GetClaims(r.Context())
		if c == nil || c.Role != "admin" {
			writeJSON(w, 403, map[string]string{"error": "admin required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- User DB operations ---

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'user',
	status        TEXT NOT NULL DEFAULT 'active',
	created_at    INTEGER NOT NULL
);
`

func seedAdmin(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin' AND status = 'active'`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123!!!"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	id := idgen.New()
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, status, created_at) VALUES (?, ?, ?, 'admin', 'active', ?)`,
		id, "admin", string(hash), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("admin user seeded", "username", "admin", "id", id)
	return nil
}

type userService struct {
	db *sql.DB
}

func (s *userService) authenticate(ctx context.Context, username, password string) (*auth.Claims, error) {
	var userID, role, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, role, password_hash FROM users WHERE username = ? AND status = 'active'`, username).
		Scan(&userID, &role, &hash)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, fmt.Errorf("wrong password")
	}
	return &auth.Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
	}, nil
}

func (s *userService) list(ctx context.Context) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, role, status, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []map[string]any
	for rows.Next() {
		var id, username, role, status string
		var createdAt int64
		if err := rows.Scan(&id, &username, &role, &status, &createdAt); err != nil {
			return nil, err
		}
		users = append(users, map[string]any{
			"id": id, "username": username,
			"role": role, "status": status, "created_at": createdAt,
		})
	}
	if users == nil {
		users = []map[string]any{}
	}
	return users, rows.Err()
}

func (s *userService) create(ctx context.Context, username, password, role string) (map[string]string, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	id := idgen.New()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, status, created_at) VALUES (?, ?, ?, ?, 'active', ?)`,
		id, username, string(hash), role, time.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return map[string]string{"id": id, "username": username, "role": role}, nil
}

func (s *userService) delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET status = 'deleted' WHERE id = ?`, userID)
	return err
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// writeSvcError maps catalog sentinel errors to HTTP statuses.
func writeSvcError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, 404, err)
	case errors.Is(err, catalog.ErrDuplicateDataset):
		writeError(w, 409, err)
	case errors.Is(err, catalog.ErrInvalidInput):
		writeError(w, 400, err)
	case errors.Is(err, catalog.ErrQuotaExceeded):
		writeError(w, 429, err)
	case errors.Is(err, catalog.ErrNoExampleURL):
		writeError(w, 422, err)
	default:
		writeError(w, 500, err)
	}
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

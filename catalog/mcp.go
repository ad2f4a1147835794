package catalog

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framehub/datacat/kit"
)

// RegisterMCP registers all catalog tools on an MCP server.
func (svc *Service) RegisterMCP(srv *mcp.Server) {
	svc.registerAddDataset(srv)
	svc.registerListDatasets(srv)
	svc.registerGetPage(srv)
	svc.registerDeleteDataset(srv)
	svc.registerSearch(srv)
	svc.registerStats(srv)
	svc.registerLoadExample(srv)
	svc.registerFetchHistory(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func (svc *Service) registerAddDataset(srv *mcp.Server) {
	type featureReq struct {
		Name  string `json:"name"`
		Dtype string `json:"dtype"`
		Shape string `json:"shape"`
		Split string `json:"split"`
	}
	type req struct {
		Name        string       `json:"name"`
		Version     string       `json:"version"`
		Description string       `json:"description"`
		Homepage    string       `json:"homepage"`
		Citation    string       `json:"citation"`
		ExampleURL  string       `json:"example_url"`
		Features    []featureReq `json:"features"`
	}

	tool := &mcp.Tool{
		Name:        "datacat_add_dataset",
		Description: "Add a new dataset to the catalog",
		InputSchema: inputSchema(map[string]any{
			"name":        map[string]any{"type": "string", "description": "Dataset name (snake_case)"},
			"version":     map[string]any{"type": "string", "description": "Version, e.g. 1.0.0"},
			"description": map[string]any{"type": "string", "description": "Dataset description"},
			"homepage":    map[string]any{"type": "string", "description": "Homepage URL"},
			"citation":    map[string]any{"type": "string", "description": "BibTeX citation"},
			"example_url": map[string]any{"type": "string", "description": "URL of the pre-rendered example page"},
			"features": map[string]any{"type": "array", "description": "Feature schema",
				"items": map[string]any{"type": "object"}},
		}, []string{"name"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		d := &Dataset{
			Name:        p.Name,
			Version:     p.Version,
			Description: p.Description,
			Homepage:    p.Homepage,
			Citation:    p.Citation,
			ExampleURL:  p.ExampleURL,
		}
		features := make([]*Feature, 0, len(p.Features))
		for _, f := range p.Features {
			features = append(features, &Feature{
				Name: f.Name, Dtype: f.Dtype, ShapeJSON: f.Shape, Split: f.Split,
			})
		}
		if err := svc.AddDataset(ctx, d, features); err != nil {
			return nil, err
		}
		return d, nil
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerListDatasets(srv *mcp.Server) {
	type req struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}

	tool := &mcp.Tool{
		Name:        "datacat_list_datasets",
		Description: "List datasets in the catalog, ordered by name",
		InputSchema: inputSchema(map[string]any{
			"limit":  map[string]any{"type": "integer", "description": "Max results (default 50)"},
			"offset": map[string]any{"type": "integer", "description": "Pagination offset"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.ListDatasets(ctx, p.Limit, p.Offset)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerGetPage(srv *mcp.Server) {
	type req struct {
		DatasetID string `json:"dataset_id"`
	}

	tool := &mcp.Tool{
		Name:        "datacat_get_page",
		Description: "Get the rendered markdown catalog page for a dataset",
		InputSchema: inputSchema(map[string]any{
			"dataset_id": map[string]any{"type": "string", "description": "Dataset ID"},
		}, []string{"dataset_id"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		page, err := svc.Page(ctx, p.DatasetID)
		if err != nil {
			return nil, err
		}
		return map[string]string{"page": page}, nil
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerDeleteDataset(srv *mcp.Server) {
	type req struct {
		DatasetID string `json:"dataset_id"`
	}

	tool := &mcp.Tool{
		Name:        "datacat_delete_dataset",
		Description: "Delete a dataset and all its content",
		InputSchema: inputSchema(map[string]any{
			"dataset_id": map[string]any{"type": "string", "description": "Dataset ID"},
		}, []string{"dataset_id"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		if err := svc.DeleteDataset(ctx, p.DatasetID); err != nil {
			return nil, err
		}
		return map[string]string{"deleted": p.DatasetID}, nil
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerSearch(srv *mcp.Server) {
	type req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}

	tool := &mcp.Tool{
		Name:        "datacat_search",
		Description: "Full-text search on dataset names and descriptions",
		InputSchema: inputSchema(map[string]any{
			"query": map[string]any{"type": "string", "description": "FTS5 query"},
			"limit": map[string]any{"type": "integer", "description": "Max results (default 20)"},
		}, []string{"query"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.Search(ctx, p.Query, p.Limit)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerStats(srv *mcp.Server) {
	type req struct{}

	tool := &mcp.Tool{
		Name:        "datacat_stats",
		Description: "Aggregate catalog counters: datasets, features, examples, fetches",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		return svc.Stats(ctx)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if len(r.Params.Arguments) > 0 {
			if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerLoadExample(srv *mcp.Server) {
	type req struct {
		DatasetID string `json:"dataset_id"`
	}

	tool := &mcp.Tool{
		Name:        "datacat_load_example",
		Description: "Trigger the one-shot load of a dataset's example page and return the surface",
		InputSchema: inputSchema(map[string]any{
			"dataset_id": map[string]any{"type": "string", "description": "Dataset ID"},
		}, []string{"dataset_id"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		surface, err := svc.LoadExample(ctx, p.DatasetID)
		if err != nil {
			return nil, err
		}
		return surface, nil
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (svc *Service) registerFetchHistory(srv *mcp.Server) {
	type req struct {
		DatasetID string `json:"dataset_id"`
		Limit     int    `json:"limit"`
	}

	tool := &mcp.Tool{
		Name:        "datacat_fetch_history",
		Description: "List example-fetch attempts for a dataset, newest first",
		InputSchema: inputSchema(map[string]any{
			"dataset_id": map[string]any{"type": "string", "description": "Dataset ID"},
			"limit":      map[string]any{"type": "integer", "description": "Max entries (default 50)"},
		}, []string{"dataset_id"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.FetchHistory(ctx, p.DatasetID, p.Limit)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

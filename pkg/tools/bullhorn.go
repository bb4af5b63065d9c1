package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recruitkit/bullhorn-mcp/pkg/bullhorn"
)

// CRMClient is the Bullhorn client surface the tools depend on. Satisfied by
// *bullhorn.Client.
type CRMClient interface {
	Search(ctx context.Context, entity, query string, opts bullhorn.SearchOptions) ([]bullhorn.Record, error)
	Query(ctx context.Context, entity, where string, opts bullhorn.QueryOptions) ([]bullhorn.Record, error)
	Get(ctx context.Context, entity string, id int, fields string) (bullhorn.Record, error)
	Meta(ctx context.Context, entity string) (bullhorn.Record, error)
}

const defaultListFilter = "isDeleted:0"

// NewBullhornRegistry builds the registry of Bullhorn CRM query tools backed
// by client.
func NewBullhornRegistry(client CRMClient) *Registry {
	registry := NewRegistry()
	registry.Register(listJobsTool(client))
	registry.Register(listCandidatesTool(client))
	registry.Register(getJobTool(client))
	registry.Register(getCandidateTool(client))
	registry.Register(searchEntitiesTool(client))
	registry.Register(queryEntitiesTool(client))
	registry.Register(getEntityFieldsTool(client))
	return registry
}

func listJobsTool(client CRMClient) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "list_jobs",
			Description: "List and filter job orders from Bullhorn CRM. Uses Lucene query syntax, e.g. \"title:Engineer AND isOpen:1\". Returns the most recently added jobs first.",
			Annotations: &mcp.ToolAnnotations{Title: "List Jobs", ReadOnlyHint: true},
			InputSchema: listSchema("Lucene search query, e.g. \"isOpen:1\" or \"title:Software AND employmentType:Direct Hire\"", "Filter by job status, e.g. \"Accepting Candidates\""),
		},
		Execute: listExecutor(client, "JobOrder"),
	}
}

func listCandidatesTool(client CRMClient) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "list_candidates",
			Description: "List and filter candidates from Bullhorn CRM. Uses Lucene query syntax, e.g. \"lastName:Smith\" or \"skillSet:Python\". Returns the most recently added candidates first.",
			Annotations: &mcp.ToolAnnotations{Title: "List Candidates", ReadOnlyHint: true},
			InputSchema: listSchema("Lucene search query, e.g. \"skillSet:Python\" or \"lastName:Smith AND status:Active\"", "Filter by candidate status, e.g. \"Active\""),
		},
		Execute: listExecutor(client, "Candidate"),
	}
}

// listExecutor implements the shared list_jobs/list_candidates behavior:
// default to all non-deleted records, AND-combine an explicit status filter,
// newest first.
func listExecutor(client CRMClient, entity string) func(context.Context, map[string]any) (*Result, error) {
	return func(ctx context.Context, args map[string]any) (*Result, error) {
		query, err := readString(args, "query", false)
		if err != nil {
			return ErrorResult("invalid_params", err.Error()), nil
		}
		status, err := readString(args, "status", false)
		if err != nil {
			return ErrorResult("invalid_params", err.Error()), nil
		}
		fields, _ := readString(args, "fields", false)

		if query == "" {
			query = defaultListFilter
		}
		if status != "" {
			query = fmt.Sprintf("(%s) AND status:%q", query, status)
		}

		records, err := client.Search(ctx, entity, query, bullhorn.SearchOptions{
			Fields: fields,
			Count:  readIntDefault(args, "limit", 20),
			Sort:   "-dateAdded",
		})
		if err != nil {
			return classifyError(err), nil
		}
		return JSONResult(records), nil
	}
}

func getJobTool(client CRMClient) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "get_job",
			Description: "Get details for a specific job order by ID.",
			Annotations: &mcp.ToolAnnotations{Title: "Get Job", ReadOnlyHint: true},
			InputSchema: getSchema("job_id", "The JobOrder ID"),
		},
		Execute: getExecutor(client, "JobOrder", "job_id"),
	}
}

func getCandidateTool(client CRMClient) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "get_candidate",
			Description: "Get details for a specific candidate by ID.",
			Annotations: &mcp.ToolAnnotations{Title: "Get Candidate", ReadOnlyHint: true},
			InputSchema: getSchema("candidate_id", "The Candidate ID"),
		},
		Execute: getExecutor(client, "Candidate", "candidate_id"),
	}
}

func getExecutor(client CRMClient, entity, idKey string) func(context.Context, map[string]any) (*Result, error) {
	return func(ctx context.Context, args map[string]any) (*Result, error) {
		id, _, err := readInt(args, idKey, true)
		if err != nil {
			return ErrorResult("invalid_params", err.Error()), nil
		}
		if id <= 0 {
			return ErrorResult("invalid_params", fmt.Sprintf("parameter %q must be a positive integer", idKey)), nil
		}
		fields, _ := readString(args, "fields", false)

		record, err := client.Get(ctx, entity, id, fields)
		if err != nil {
			return classifyError(err), nil
		}
		return JSONResult(record), nil
	}
}

func searchEntitiesTool(client CRMClient) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "search_entities",
			Description: "Search any Bullhorn entity type using Lucene query syntax, e.g. search_entities(entity=\"Placement\", query=\"status:Approved\") or search_entities(entity=\"ClientCorporation\", query=\"name:Acme*\").",
			Annotations: &mcp.ToolAnnotations{Title: "Search Entities", ReadOnlyHint: true},
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"entity": map[string]any{
						"type":        "string",
						"description": "Entity type (JobOrder, Candidate, Placement, ClientCorporation, ClientContact, etc.)",
					},
					"query": map[string]any{
						"type":        "string",
						"description": "Lucene search query",
					},
					"limit":  limitSchema(),
					"fields": fieldsSchema(),
					"start": map[string]any{
						"type":        "integer",
						"description": "Starting offset for pagination",
					},
				},
				"required": []string{"entity", "query"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (*Result, error) {
			entity, err := readString(args, "entity", true)
			if err != nil {
				return ErrorResult("invalid_params", err.Error()), nil
			}
			query, err := readString(args, "query", true)
			if err != nil || query == "" {
				return ErrorResult("invalid_params", "parameter \"query\" is required"), nil
			}
			fields, _ := readString(args, "fields", false)

			records, err := client.Search(ctx, entity, query, bullhorn.SearchOptions{
				Fields: fields,
				Count:  readIntDefault(args, "limit", 20),
				Start:  readIntDefault(args, "start", 0),
			})
			if err != nil {
				return classifyError(err), nil
			}
			return JSONResult(records), nil
		},
	}
}

func queryEntitiesTool(client CRMClient) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "query_entities",
			Description: "Query Bullhorn entities using SQL-like WHERE syntax, e.g. query_entities(entity=\"JobOrder\", where=\"salary > 100000\") or query_entities(entity=\"Candidate\", where=\"status='Active'\", order_by=\"-dateAdded\").",
			Annotations: &mcp.ToolAnnotations{Title: "Query Entities", ReadOnlyHint: true},
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"entity": map[string]any{
						"type":        "string",
						"description": "Entity type (JobOrder, Candidate, etc.)",
					},
					"where": map[string]any{
						"type":        "string",
						"description": "WHERE clause, e.g. \"salary > 100000 AND status='Active'\"",
					},
					"limit":  limitSchema(),
					"fields": fieldsSchema(),
					"order_by": map[string]any{
						"type":        "string",
						"description": "Sort order, e.g. \"-dateAdded\" for newest first",
					},
					"start": map[string]any{
						"type":        "integer",
						"description": "Starting offset for pagination",
					},
				},
				"required": []string{"entity", "where"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (*Result, error) {
			entity, err := readString(args, "entity", true)
			if err != nil {
				return ErrorResult("invalid_params", err.Error()), nil
			}
			where, err := readString(args, "where", true)
			if err != nil || where == "" {
				return ErrorResult("invalid_params", "parameter \"where\" is required"), nil
			}
			fields, _ := readString(args, "fields", false)
			orderBy, _ := readString(args, "order_by", false)

			records, err := client.Query(ctx, entity, where, bullhorn.QueryOptions{
				Fields:  fields,
				Count:   readIntDefault(args, "limit", 20),
				Start:   readIntDefault(args, "start", 0),
				OrderBy: orderBy,
			})
			if err != nil {
				return classifyError(err), nil
			}
			return JSONResult(records), nil
		},
	}
}

func getEntityFieldsTool(client CRMClient) *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        "get_entity_fields",
			Description: "Get the field metadata for a Bullhorn entity type, including every available field name. Useful before building a search or query with explicit fields.",
			Annotations: &mcp.ToolAnnotations{Title: "Get Entity Fields", ReadOnlyHint: true},
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"entity": map[string]any{
						"type":        "string",
						"description": "Entity type (JobOrder, Candidate, etc.)",
					},
				},
				"required": []string{"entity"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (*Result, error) {
			entity, err := readString(args, "entity", true)
			if err != nil {
				return ErrorResult("invalid_params", err.Error()), nil
			}
			meta, err := client.Meta(ctx, entity)
			if err != nil {
				return classifyError(err), nil
			}
			return JSONResult(meta), nil
		},
	}
}

func listSchema(queryDesc, statusDesc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":  map[string]any{"type": "string", "description": queryDesc},
			"status": map[string]any{"type": "string", "description": statusDesc},
			"limit":  limitSchema(),
			"fields": fieldsSchema(),
		},
	}
}

func getSchema(idKey, idDesc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			idKey:    map[string]any{"type": "integer", "description": idDesc},
			"fields": fieldsSchema(),
		},
		"required": []string{idKey},
	}
}

func limitSchema() map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": "Maximum number of results (1-500, default 20)",
	}
}

func fieldsSchema() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Comma-separated fields to return",
	}
}

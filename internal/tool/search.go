package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hiveintelligencexyz/hive-mcp/internal/mcp"
	"github.com/hiveintelligencexyz/hive-mcp/internal/models"
)

// Name is the single operation this server exposes.
const Name = "search"

const description = "Search and analyze real-time crypto and Web3 intelligence " +
	"using the Hive Intelligence API. Provide either a single prompt or a list " +
	"of conversation messages, never both."

// SearchClient is the one outbound dependency: a provider exposing a
// single search operation.
type SearchClient interface {
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error)
}

// SearchTool validates tool-call arguments, forwards well-formed queries
// to the provider, and shapes replies into protocol content.
type SearchTool struct {
	client SearchClient
}

// NewSearchTool creates the search tool backed by the given provider client.
func NewSearchTool(client SearchClient) *SearchTool {
	return &SearchTool{client: client}
}

// Definition returns the static tool descriptor for capability discovery.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.Tool{
		Name:        Name,
		Description: description,
		InputSchema: inputSchema(),
	}
}

// Handle runs one invocation: validate, build, call the provider, shape.
// Every failure surfaces as a protocol-level *mcp.Error.
func (t *SearchTool) Handle(ctx context.Context, args map[string]interface{}) (*mcp.ToolResult, error) {
	if verr := validateArguments(args); verr != nil {
		return nil, verr
	}

	searchReq, err := buildSearchRequest(args)
	if err != nil {
		return nil, normalizeError(err)
	}

	searchResp, err := t.client.Search(ctx, searchReq)
	if err != nil {
		return nil, normalizeError(err)
	}

	return shapeResult(searchResp)
}

// validateArguments enforces the mutually-exclusive input modes: exactly
// one of prompt or messages must be present. The internal shape of
// messages is left to the protocol schema.
func validateArguments(args map[string]interface{}) *mcp.Error {
	if args == nil {
		return mcp.NewError(mcp.CodeInvalidParams, "no arguments")
	}

	hasPrompt := args["prompt"] != nil
	hasMessages := args["messages"] != nil

	if !hasPrompt && !hasMessages {
		return mcp.NewError(mcp.CodeInvalidParams, "missing required input")
	}
	if hasPrompt && hasMessages {
		return mcp.NewError(mcp.CodeInvalidParams, "conflicting inputs")
	}
	return nil
}

// buildSearchRequest maps validated arguments to the provider request
// shape. include_data_sources is copied only when strictly boolean; any
// other type is silently dropped.
func buildSearchRequest(args map[string]interface{}) (*models.SearchRequest, error) {
	req := &models.SearchRequest{}

	if raw, ok := args["prompt"]; ok && raw != nil {
		prompt, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("prompt must be a string")
		}
		req.Prompt = prompt
	}

	if raw, ok := args["messages"]; ok && raw != nil {
		messages, err := decodeMessages(raw)
		if err != nil {
			return nil, err
		}
		req.Messages = messages
	}

	if raw, ok := args["include_data_sources"]; ok {
		if include, ok := raw.(bool); ok {
			req.IncludeDataSources = &include
		}
	}

	return req, nil
}

// decodeMessages converts the untyped message list through a JSON
// round-trip into the typed shape.
func decodeMessages(raw interface{}) ([]models.Message, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode messages: %w", err)
	}
	var messages []models.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("messages must be an array of {role, content} objects")
	}
	return messages, nil
}

func inputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"prompt": map[string]interface{}{
				"type":        "string",
				"description": "A single natural-language search query",
			},
			"messages": map[string]interface{}{
				"type":        "array",
				"description": "Conversation history for multi-turn search",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"role":    map[string]interface{}{"type": "string", "enum": []string{"user", "assistant"}},
						"content": map[string]interface{}{"type": "string"},
					},
					"required": []string{"role", "content"},
				},
			},
			"include_data_sources": map[string]interface{}{
				"type":        "boolean",
				"description": "Include source citations in the response",
			},
		},
		"oneOf": []interface{}{
			map[string]interface{}{"required": []string{"prompt"}},
			map[string]interface{}{"required": []string{"messages"}},
		},
	}
}

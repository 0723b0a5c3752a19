package tool

import (
	"encoding/json"

	"github.com/hiveintelligencexyz/hive-mcp/internal/mcp"
	"github.com/hiveintelligencexyz/hive-mcp/internal/models"
)

// shapeResult converts a provider reply into the tool result envelope.
// A non-terminal clarification marker always wins and suppresses source
// citations: a reply never presents both.
func shapeResult(resp *models.SearchResponse) (*mcp.ToolResult, error) {
	result := models.SearchResult{}

	if resp.IsAdditionalDataRequired != "" {
		result.Response = resp.IsAdditionalDataRequired
	} else {
		result.Response = resp.Response
		if hasDataSources(resp.DataSources) {
			result.DataSources = resp.DataSources
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, normalizeError(err)
	}

	return mcp.NewTextResult(string(data)), nil
}

func hasDataSources(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

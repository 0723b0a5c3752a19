package tool

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hiveintelligencexyz/hive-mcp/internal/models"
)

func TestShapeResult(t *testing.T) {
	t.Run("clarification wins over sources", func(t *testing.T) {
		resp := &models.SearchResponse{
			Response:                 "partial",
			DataSources:              []byte(`[{"url":"https://example.com"}]`),
			IsAdditionalDataRequired: "clarify?",
		}

		result, err := shapeResult(resp)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		var shaped map[string]interface{}
		if err := json.Unmarshal([]byte(result.Content[0].Text), &shaped); err != nil {
			t.Fatalf("Content is not valid JSON: %v", err)
		}

		if shaped["response"] != "clarify?" {
			t.Errorf("Expected response 'clarify?', got %v", shaped["response"])
		}
		if _, ok := shaped["data_sources"]; ok {
			t.Error("Expected data_sources suppressed alongside clarification request")
		}
	})

	t.Run("terminal without sources", func(t *testing.T) {
		resp := &models.SearchResponse{Response: "ETH is $3000"}

		result, err := shapeResult(resp)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		var shaped map[string]interface{}
		if err := json.Unmarshal([]byte(result.Content[0].Text), &shaped); err != nil {
			t.Fatalf("Content is not valid JSON: %v", err)
		}

		if shaped["response"] != "ETH is $3000" {
			t.Errorf("Expected terminal response, got %v", shaped["response"])
		}
		if _, ok := shaped["data_sources"]; ok {
			t.Error("Expected no data_sources key when provider sent none")
		}
	})

	t.Run("terminal with sources", func(t *testing.T) {
		resp := &models.SearchResponse{
			Response:    "BTC dominance is 54%",
			DataSources: []byte(`[{"url":"https://example.com","title":"Markets"}]`),
		}

		result, err := shapeResult(resp)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		var shaped struct {
			Response    string `json:"response"`
			DataSources []struct {
				URL   string `json:"url"`
				Title string `json:"title"`
			} `json:"data_sources"`
		}
		if err := json.Unmarshal([]byte(result.Content[0].Text), &shaped); err != nil {
			t.Fatalf("Content is not valid JSON: %v", err)
		}

		if len(shaped.DataSources) != 1 || shaped.DataSources[0].URL != "https://example.com" {
			t.Errorf("Expected data_sources carried through, got %+v", shaped.DataSources)
		}
	})

	t.Run("null sources treated as absent", func(t *testing.T) {
		resp := &models.SearchResponse{
			Response:    "answer",
			DataSources: []byte(`null`),
		}

		result, err := shapeResult(resp)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if strings.Contains(result.Content[0].Text, "data_sources") {
			t.Errorf("Expected null data_sources dropped, got %q", result.Content[0].Text)
		}
	})

	t.Run("content is pretty-printed", func(t *testing.T) {
		resp := &models.SearchResponse{Response: "x"}

		result, err := shapeResult(resp)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		text := result.Content[0].Text
		if !strings.Contains(text, "\n") || !strings.Contains(text, "  \"response\"") {
			t.Errorf("Expected indented JSON, got %q", text)
		}
	})
}

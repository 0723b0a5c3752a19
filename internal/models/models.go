package models

import "encoding/json"

// Message is a single turn in a multi-turn search conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// SearchRequest is the validated, provider-facing request shape.
// Exactly one of Prompt or Messages is set after validation.
type SearchRequest struct {
	Prompt             string    `json:"prompt,omitempty"`
	Messages           []Message `json:"messages,omitempty"`
	IncludeDataSources *bool     `json:"include_data_sources,omitempty"`
}

// SearchResponse is the Hive Intelligence API reply. A non-empty
// IsAdditionalDataRequired marks a non-terminal reply asking the caller
// for more input; otherwise Response carries the terminal answer and
// DataSources the optional source descriptors.
type SearchResponse struct {
	Response                 string          `json:"response,omitempty"`
	DataSources              json.RawMessage `json:"data_sources,omitempty"`
	IsAdditionalDataRequired string          `json:"isAdditionalDataRequired,omitempty"`
}

// SearchResult is the result mapping embedded in the tool response
// content. DataSources is never set alongside a clarification request.
type SearchResult struct {
	Response    string          `json:"response"`
	DataSources json.RawMessage `json:"data_sources,omitempty"`
}

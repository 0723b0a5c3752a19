package tool

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hiveintelligencexyz/hive-mcp/internal/hive"
	"github.com/hiveintelligencexyz/hive-mcp/internal/mcp"
)

const (
	timeoutMessage  = "Request timed out. The Hive Intelligence API did not respond in time."
	networkMessage  = "Network error: Unable to connect to Hive Intelligence API"
	fallbackMessage = "An unexpected error occurred while calling the Hive Intelligence API"
)

// normalizeError maps any failure from building, calling, or shaping
// into one uniform internal error. Classification precedence: timeout,
// provider error, network error, verbatim message, generic fallback.
func normalizeError(err error) *mcp.Error {
	var timeoutErr *hive.TimeoutError
	var apiErr *hive.APIError
	var netErr *hive.NetworkError

	switch {
	case errors.As(err, &timeoutErr):
		return mcp.NewError(mcp.CodeInternalError, timeoutMessage)

	case errors.As(err, &apiErr):
		msg := fmt.Sprintf("Hive API Error: %d %s", apiErr.StatusCode, apiErr.StatusText)
		if apiErr.Body != "" {
			msg += "\n\nDetails: " + prettyDetails(apiErr.Body)
		}
		return mcp.NewError(mcp.CodeInternalError, msg)

	case errors.As(err, &netErr):
		return mcp.NewError(mcp.CodeInternalError, networkMessage+"\n\nDetails: "+netErr.Code)

	case err != nil && err.Error() != "":
		return mcp.NewError(mcp.CodeInternalError, err.Error())
	}

	return mcp.NewError(mcp.CodeInternalError, fallbackMessage)
}

// prettyDetails re-indents a JSON error body; non-JSON bodies pass
// through unchanged.
func prettyDetails(body string) string {
	var parsed interface{}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return body
	}
	data, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return body
	}
	return string(data)
}

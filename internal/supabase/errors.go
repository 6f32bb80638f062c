package supabase

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the hosted service. Error returns the
// service's own message so it can be shown to the user as-is.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
	Hint       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("supabase: unexpected status %d", e.StatusCode)
}

// errorBody covers both the REST (PostgREST) and the storage error shapes.
type errorBody struct {
	Code       json.RawMessage `json:"code"`
	Message    string          `json:"message"`
	Msg        string          `json:"msg"`
	Details    string          `json:"details"`
	Hint       string          `json:"hint"`
	Error      string          `json:"error"`
	StatusCode json.RawMessage `json:"statusCode"`
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	apiErr.Code = strings.Trim(string(body.Code), `"`)
	apiErr.Details = body.Details
	apiErr.Hint = body.Hint
	switch {
	case body.Message != "":
		apiErr.Message = body.Message
	case body.Msg != "":
		apiErr.Message = body.Msg
	case body.Error != "":
		apiErr.Message = body.Error
	}
	return apiErr
}

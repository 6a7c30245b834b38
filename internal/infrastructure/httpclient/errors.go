package httpclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

// errorBody covers the error envelopes the API is known to emit:
// {"detail": "..."}, {"detail": [{"msg": "...", "loc": [...]}]} and {"error": "..."}.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

type validationItem struct {
	Msg string `json:"msg"`
	Loc []any  `json:"loc"`
}

func responseError(resp *ports.Response) error {
	return &domain.APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return strings.TrimSpace(string(body))
	}
	if len(eb.Detail) > 0 {
		var s string
		if json.Unmarshal(eb.Detail, &s) == nil {
			return s
		}
		var items []validationItem
		if json.Unmarshal(eb.Detail, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if field := lastLoc(it.Loc); field != "" {
					msgs = append(msgs, field+": "+it.Msg)
					continue
				}
				msgs = append(msgs, it.Msg)
			}
			return strings.Join(msgs, "; ")
		}
	}
	return eb.Error
}

func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	return fmt.Sprint(loc[len(loc)-1])
}

func networkError(method, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, method, path, err)
}

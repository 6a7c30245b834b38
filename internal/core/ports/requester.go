package ports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// RequestSpec describes one outbound API call. Path is relative to the API
// prefix (e.g. "/tasks/3").
type RequestSpec struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// NoRefresh disables the refresh-and-retry protocol for this call.
	NoRefresh bool
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. Empty bodies are a no-op.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Body) == 0 || v == nil {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Requester sends authenticated requests to the API. Non-2xx responses are
// returned as *domain.APIError.
type Requester interface {
	Send(ctx context.Context, spec RequestSpec) (*Response, error)
}

// APIClient is a Requester that can also exchange the stored refresh token
// for a new access token on demand.
type APIClient interface {
	Requester
	Refresh(ctx context.Context) (string, error)
}

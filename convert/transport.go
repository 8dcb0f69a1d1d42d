package convert

import "net/http"

// bearerTransport injects an Authorization header into every outgoing
// request. The conversion service rejects unauthenticated submissions
// when an API key is configured, so all endpoints go through it.
type bearerTransport struct {
	base  http.RoundTripper
	token string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	// Requests must not be mutated in place.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)

	return base.RoundTrip(clone)
}

func newHTTPClientWithBearer(token string) *http.Client {
	return &http.Client{
		Transport: &bearerTransport{token: token},
	}
}

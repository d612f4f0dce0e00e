package http

import "net/http"

// headerTransport sets fixed headers on every outgoing request
type headerTransport struct {
	headers   http.Header
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())
	for key, values := range t.headers {
		reqCopy.Header[key] = values
	}
	return t.transport.RoundTrip(reqCopy)
}

func withHeaders(h http.Header) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{headers: h, transport: rt}
	})
}

// WithAuthToken adds a bearer token; an empty token adds nothing
func WithAuthToken(token string) HttpOpts {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return withHeaders(h)
}

func WithUserAgent(agent string) HttpOpts {
	h := http.Header{}
	h.Set("User-Agent", agent)
	return withHeaders(h)
}

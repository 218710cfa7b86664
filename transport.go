package pacer

import "net/http"

// roundTripper implements http.RoundTripper and applies the client's
// registered per-endpoint rate limits before forwarding to the base
// transport. Retries are not performed at this layer: request bodies flowing
// through a RoundTripper are not replayable.
type roundTripper struct {
	client *Client
	base   http.RoundTripper
}

// Transport wraps an http.RoundTripper so that every request made through it
// is rate-limited per the client's endpoint configuration. URLs without a
// registry entry pass through unthrottled.
//
// Example:
//
//	hc := &http.Client{Transport: client.Transport(nil)}
func (c *Client) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &roundTripper{client: c, base: base}
}

func (t *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if s, ok := t.client.registry.resolve(req.URL.String()); ok {
		if err := s.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.base.RoundTrip(req)
}

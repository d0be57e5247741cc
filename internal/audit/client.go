package audit

import "context"

type clientKey struct{}

// Client identifies where an audited request came from
type Client struct {
	IPAddress string
	UserAgent string
}

// WithClient returns a context whose audit entries carry client
func WithClient(ctx context.Context, client Client) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

// ClientFrom returns the client attached by WithClient
func ClientFrom(ctx context.Context) (Client, bool) {
	client, ok := ctx.Value(clientKey{}).(Client)
	return client, ok
}

package webclient

import "context"

// WebClient performs outbound HTTP calls on behalf of the service.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

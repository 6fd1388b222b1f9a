package domain

import "context"

//go:generate mockgen -source=gateway.go -destination=mock_gateway.go -package=domain

// SearchGateway is the two-operation contract wrapping the upstream asynchronous search.
// It is implemented in-process by the usecase package and remotely by the client package.
type SearchGateway interface {
	// Create starts an upstream search. A 401/403 upstream answer is reported as ErrLiveUnavailable.
	Create(ctx context.Context, req SearchRequest) (*CreateResult, error)

	// Poll fetches offers newer than the request watermark.
	Poll(ctx context.Context, req PollRequest) (*PollResult, error)
}

package domain

import "context"

//go:generate mockgen -source=upstream.go -destination=mock_upstream.go -package=domain

// UpstreamClient is the raw upstream flight-pricing API as seen by the gateway.
type UpstreamClient interface {
	// CreateSearch starts an asynchronous search and returns its id and results URL.
	CreateSearch(ctx context.Context, req SearchRequest) (*CreateResult, error)

	// FetchResults returns the decoded result body newer than watermark.
	// The shape varies between API versions and is interpreted by the normalizer.
	FetchResults(ctx context.Context, searchID, resultsURL string, watermark int64) (any, error)

	// ResolveClick returns the partner booking URL of one proposal.
	ResolveClick(ctx context.Context, searchID, resultsURL, proposalID string) (string, error)
}

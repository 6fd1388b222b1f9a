// Package session keeps the short-lived state of an upstream search between
// create and poll calls: its results URL, the request it was created from and
// the last seen watermark.
package session

import (
	"context"
	"time"

	"github.com/flight-search/live-search-gateway/internal/domain"
)

// DefaultTTL is how long a search session is kept after its last write.
const DefaultTTL = 30 * time.Minute

// Store persists search sessions. Get returns domain.ErrSessionNotFound for
// unknown or expired IDs.
type Store interface {
	Save(ctx context.Context, s domain.SearchSession) error
	Get(ctx context.Context, searchID string) (*domain.SearchSession, error)
	UpdateWatermark(ctx context.Context, searchID string, ts int64) error
	Delete(ctx context.Context, searchID string) error
	Close() error
}

package ports

import (
	"context"

	"go.trai.ch/swcache/internal/core/domain"
)

// Fetcher performs network requests.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	// Fetch sends req and returns the response. Any HTTP status is a response, not an error;
	// only transport failures return an error.
	Fetch(ctx context.Context, req *domain.Request) (*domain.Response, error)
}

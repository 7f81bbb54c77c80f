package repositories

import (
	"context"

	"github.com/vicimikul/lifi-fee-scraper/internal/domain/entities"
)

// FeeEventRepository defines the interface for fee event storage.
type FeeEventRepository interface {
	// InsertMany persists a batch of events, all tagged with chainID.
	// Events whose identity already exists are skipped; an empty batch is
	// a no-op. A schema violation aborts the whole batch.
	InsertMany(ctx context.Context, events []entities.FeeEvent, chainID int64) error

	// FindByIntegrator retrieves events matching both the chain and the
	// integrator address. Order is unspecified.
	FindByIntegrator(ctx context.Context, chainID int64, integrator string) ([]entities.FeeEvent, error)
}

package repositories

import (
	"context"
)

// ProgressRepository defines the interface for the per-chain scan cursor.
type ProgressRepository interface {
	// Get returns the last scanned block for a chain. found is false when
	// no record exists; the caller falls back to the configured start block.
	Get(ctx context.Context, chainID int64) (blockNumber int64, found bool, err error)

	// Set upserts the cursor. A negative block number is a validation
	// error. Last write wins under the single-writer assumption.
	Set(ctx context.Context, chainID int64, blockNumber int64) error
}

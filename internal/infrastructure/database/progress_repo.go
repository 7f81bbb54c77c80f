package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vicimikul/lifi-fee-scraper/internal/domain/entities"
	"github.com/vicimikul/lifi-fee-scraper/internal/domain/repositories"
	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

const progressCollection = "lastScannedBlocks"

// Ensure ProgressRepo implements ProgressRepository
var _ repositories.ProgressRepository = (*ProgressRepo)(nil)

// ProgressRepo implements ProgressRepository on MongoDB. One record per
// chain, enforced by the unique chainId index.
type ProgressRepo struct {
	coll *mongo.Collection
}

// NewProgressRepo creates a new progress repository.
func NewProgressRepo(db *MongoDB) *ProgressRepo {
	return &ProgressRepo{coll: db.Database().Collection(progressCollection)}
}

// Get returns the stored cursor for a chain, with found=false when no
// record exists yet.
func (r *ProgressRepo) Get(ctx context.Context, chainID int64) (int64, bool, error) {
	var doc entities.ScanProgress
	err := r.coll.FindOne(ctx, bson.M{"chainId": chainID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, false, nil
		}
		return 0, false, errs.NewDatabase("get progress", err)
	}
	return doc.BlockNumber, true, nil
}

// Set upserts the cursor unconditionally. Writes for different chains
// never conflict.
func (r *ProgressRepo) Set(ctx context.Context, chainID int64, blockNumber int64) error {
	if blockNumber < 0 {
		return errs.NewValidation("negative block number %d", blockNumber)
	}

	now := time.Now().UTC()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"chainId": chainID},
		bson.M{
			"$set":         bson.M{"blockNumber": blockNumber, "updatedAt": now},
			"$setOnInsert": bson.M{"chainId": chainID, "createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errs.NewDatabase("set progress", err)
	}
	return nil
}

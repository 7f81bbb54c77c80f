package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/vicimikul/lifi-fee-scraper/internal/domain/entities"
	"github.com/vicimikul/lifi-fee-scraper/internal/domain/repositories"
	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

const eventsCollection = "feeCollectedEvents"

// Ensure FeeEventRepo implements FeeEventRepository
var _ repositories.FeeEventRepository = (*FeeEventRepo)(nil)

// FeeEventRepo implements FeeEventRepository on MongoDB.
type FeeEventRepo struct {
	db     *MongoDB
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewFeeEventRepo creates a new fee event repository.
func NewFeeEventRepo(db *MongoDB, logger *zap.Logger) *FeeEventRepo {
	return &FeeEventRepo{
		db:     db,
		coll:   db.Database().Collection(eventsCollection),
		logger: logger,
	}
}

// InsertMany persists a batch of events tagged with chainID. Already
// stored identities are skipped; the unordered insert swallows the
// duplicate-key races the pre-read cannot see. When the deployment
// supports multi-document transactions the insert runs in one.
func (r *FeeEventRepo) InsertMany(ctx context.Context, events []entities.FeeEvent, chainID int64) error {
	if len(events) == 0 {
		return nil
	}

	records := make([]entities.FeeEvent, 0, len(events))
	for i := range events {
		event := events[i]
		if err := event.Validate(); err != nil {
			return err
		}
		event.ChainID = chainID
		if err := event.ValidateStored(); err != nil {
			return err
		}
		records = append(records, event)
	}

	existing, err := r.existingIdentities(ctx, chainID, records)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(records))
	for i := range records {
		if _, dup := existing[records[i].Identity().Key()]; dup {
			continue
		}
		records[i].CreatedAt = now
		records[i].UpdatedAt = now
		docs = append(docs, records[i])
	}
	if len(docs) == 0 {
		return nil
	}

	insert := func(insertCtx context.Context) error {
		_, err := r.coll.InsertMany(insertCtx, docs, options.InsertMany().SetOrdered(false))
		if err != nil && !isDuplicateKeyOnly(err) {
			return errs.NewDatabase("insert events", err)
		}
		return nil
	}

	if r.db.SupportsTransactions() {
		session, err := r.db.Client().StartSession()
		if err != nil {
			return errs.NewDatabase("start session", err)
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			return nil, insert(sc)
		})
		if err != nil {
			if errs.IsDatabase(err) {
				return err
			}
			return errs.NewDatabase("insert events transaction", err)
		}
		return nil
	}

	return insert(ctx)
}

// existingIdentities reads the identity triples of the batch that are
// already stored.
func (r *FeeEventRepo) existingIdentities(ctx context.Context, chainID int64, records []entities.FeeEvent) (map[string]struct{}, error) {
	ors := make(bson.A, 0, len(records))
	for i := range records {
		ors = append(ors, bson.M{
			"transactionHash": records[i].TransactionHash,
			"logIndex":        records[i].LogIndex,
		})
	}

	filter := bson.M{"chainId": chainID, "$or": ors}
	projection := options.Find().SetProjection(bson.M{
		"chainId":         1,
		"transactionHash": 1,
		"logIndex":        1,
	})

	cursor, err := r.coll.Find(ctx, filter, projection)
	if err != nil {
		return nil, errs.NewDatabase("read existing identities", err)
	}
	defer cursor.Close(ctx)

	existing := make(map[string]struct{})
	for cursor.Next(ctx) {
		var doc entities.FeeEvent
		if err := cursor.Decode(&doc); err != nil {
			return nil, errs.NewDatabase("decode identity", err)
		}
		existing[doc.Identity().Key()] = struct{}{}
	}
	if err := cursor.Err(); err != nil {
		return nil, errs.NewDatabase("iterate identities", err)
	}

	return existing, nil
}

// FindByIntegrator retrieves events for one integrator on one chain.
func (r *FeeEventRepo) FindByIntegrator(ctx context.Context, chainID int64, integrator string) ([]entities.FeeEvent, error) {
	cursor, err := r.coll.Find(ctx, bson.M{
		"integrator": integrator,
		"chainId":    chainID,
	})
	if err != nil {
		return nil, errs.NewDatabase("find by integrator", err)
	}
	defer cursor.Close(ctx)

	events := make([]entities.FeeEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, errs.NewDatabase("decode events", err)
	}

	return events, nil
}

// isDuplicateKeyOnly reports whether every write error in err is a
// duplicate-key conflict. Those are expected under concurrent re-scans
// and are not failures.
func isDuplicateKeyOnly(err error) bool {
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		if bwe.WriteConcernError != nil {
			return false
		}
		for _, we := range bwe.WriteErrors {
			if we.Code != 11000 {
				return false
			}
		}
		return len(bwe.WriteErrors) > 0
	}
	return mongo.IsDuplicateKeyError(err)
}

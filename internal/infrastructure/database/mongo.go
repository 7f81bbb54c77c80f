package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"

	"github.com/vicimikul/lifi-fee-scraper/internal/config"
)

const defaultDatabase = "lifi"

// MongoDB wraps the shared storage client. Transaction support is
// feature-detected once at connect time; the identity index keeps
// writes correct either way.
type MongoDB struct {
	client     *mongo.Client
	db         *mongo.Database
	logger     *zap.Logger
	supportsTx bool
}

// NewMongoDB connects to the configured deployment and pings it.
func NewMongoDB(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*MongoDB, error) {
	cs, err := connstring.ParseAndValidate(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid mongo uri: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	dbName := cs.Database
	if dbName == "" {
		dbName = defaultDatabase
	}

	m := &MongoDB{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}
	m.supportsTx = m.detectTransactionSupport(connectCtx)

	logger.Info("Connected to MongoDB",
		zap.String("database", dbName),
		zap.Bool("transactions", m.supportsTx),
	)

	return m, nil
}

// detectTransactionSupport checks whether the deployment is a replica set
// or mongos, the two topologies that accept multi-document transactions.
func (m *MongoDB) detectTransactionSupport(ctx context.Context) bool {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := m.client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		m.logger.Warn("Topology detection failed, transactions disabled", zap.Error(err))
		return false
	}
	return hello.SetName != "" || hello.Msg == "isdbgrid"
}

// Database returns the handle repos operate on.
func (m *MongoDB) Database() *mongo.Database {
	return m.db
}

// Client returns the underlying client, used for sessions.
func (m *MongoDB) Client() *mongo.Client {
	return m.client
}

// SupportsTransactions reports the topology detected at connect time.
func (m *MongoDB) SupportsTransactions() bool {
	return m.supportsTx
}

// HealthCheck pings the deployment.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the storage client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes both stores rely on: the unique
// identity index and the integrator read index on events, and the
// unique chain index on progress records.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	events := m.db.Collection(eventsCollection)
	_, err := events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "chainId", Value: 1},
				{Key: "transactionHash", Value: 1},
				{Key: "logIndex", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("event_identity"),
		},
		{
			Keys: bson.D{
				{Key: "integrator", Value: 1},
				{Key: "chainId", Value: 1},
			},
			Options: options.Index().SetName("integrator_chain"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create event indexes: %w", err)
	}

	progress := m.db.Collection(progressCollection)
	_, err = progress.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chainId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("chain_cursor"),
	})
	if err != nil {
		return fmt.Errorf("failed to create progress index: %w", err)
	}

	return nil
}

package ethereum

import (
	"context"
	"math/big"
	"sync"
	"time"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/vicimikul/lifi-fee-scraper/internal/chains"
	"github.com/vicimikul/lifi-fee-scraper/internal/config"
	"github.com/vicimikul/lifi-fee-scraper/internal/domain/entities"
	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

// Client is the chain-scoped facade over the JSON-RPC provider and the
// FeesCollected decoder. The underlying connection is dialed lazily on
// first use and cached for the process lifetime.
type Client struct {
	chain  chains.Chain
	cfg    config.RPCConfig
	logger *zap.Logger

	mu  sync.Mutex
	eth *ethclient.Client
}

// NewClient creates a client for one chain. No connection is made here.
func NewClient(chain chains.Chain, cfg config.RPCConfig, logger *zap.Logger) *Client {
	return &Client{
		chain:  chain,
		cfg:    cfg,
		logger: logger,
	}
}

// Chain returns the descriptor this client serves.
func (c *Client) Chain() chains.Chain {
	return c.chain
}

// Close releases the cached connection, if any.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
}

func (c *Client) conn(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eth != nil {
		return c.eth, nil
	}

	eth, err := ethclient.DialContext(ctx, c.chain.RPCURL)
	if err != nil {
		return nil, errs.ClassifyBlockchain("dial provider", err)
	}

	c.logger.Info("Connected to RPC provider",
		zap.String("chain", c.chain.Name),
		zap.Int64("chain_id", c.chain.ID),
	)

	c.eth = eth
	return eth, nil
}

// LatestBlock returns the chain head, retrying transient provider failures.
func (c *Client) LatestBlock(ctx context.Context) (int64, error) {
	eth, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}

	var head uint64
	err = c.withRetry(ctx, "get latest block", func(callCtx context.Context) error {
		var callErr error
		head, callErr = eth.BlockNumber(callCtx)
		return callErr
	})
	if err != nil {
		return 0, errs.ClassifyBlockchain("get latest block", err)
	}

	return int64(head), nil
}

// FetchEvents queries the closed window [from, to] for FeesCollected
// events and returns them decoded, in the provider's block-then-log
// order. An inverted window is a validation error and performs no I/O.
func (c *Client) FetchEvents(ctx context.Context, from, to int64) ([]entities.FeeEvent, error) {
	if from > to {
		return nil, errs.NewValidation("fromBlock %d greater than toBlock %d", from, to)
	}

	eth, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := goethereum.FilterQuery{
		FromBlock: big.NewInt(from),
		ToBlock:   big.NewInt(to),
		Addresses: []common.Address{common.HexToAddress(c.chain.ContractAddress)},
		Topics:    [][]common.Hash{{FeesCollectedTopic}},
	}

	var logs []types.Log
	err = c.withRetry(ctx, "get logs", func(callCtx context.Context) error {
		var callErr error
		logs, callErr = eth.FilterLogs(callCtx, query)
		return callErr
	})
	if err != nil {
		return nil, errs.ClassifyBlockchain("get logs", err)
	}

	events, err := ParseFeesCollectedLogs(logs)
	if err != nil {
		return nil, errs.NewBlockchain(errs.KindGeneric, "invalid event data", err)
	}

	c.logger.Debug("Fetched events",
		zap.Int64("chain_id", c.chain.ID),
		zap.Int64("from_block", from),
		zap.Int64("to_block", to),
		zap.Int("event_count", len(events)),
	)

	return events, nil
}

// withRetry runs one provider call with the configured per-call timeout,
// retrying up to MaxRetries times.
func (c *Client) withRetry(ctx context.Context, op string, call func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		err = call(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}

		c.logger.Warn("Provider call failed, retrying",
			zap.String("op", op),
			zap.String("chain", c.chain.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		if attempt < c.cfg.MaxRetries {
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

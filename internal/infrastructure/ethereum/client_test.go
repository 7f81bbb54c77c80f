package ethereum

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vicimikul/lifi-fee-scraper/internal/chains"
	"github.com/vicimikul/lifi-fee-scraper/internal/config"
	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

func testChain() chains.Chain {
	return chains.Chain{
		ID:              137,
		Name:            "polygon",
		RPCURL:          "https://polygon.example",
		StartBlock:      1000,
		ContractAddress: testCollector,
	}
}

func TestFetchEvents_InvertedWindowNoIO(t *testing.T) {
	// The validation error fires before any provider connection is made;
	// the bogus URL would otherwise fail the call differently.
	c := NewClient(testChain(), config.RPCConfig{RequestTimeout: time.Second}, zap.NewNop())

	_, err := c.FetchEvents(context.Background(), 10, 5)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errs.IsValidation(err) {
		t.Errorf("expected validation error, got %T: %v", err, err)
	}
}

func TestFetchEvents_SingleBlockWindowAccepted(t *testing.T) {
	// from == to is a valid single-block query; it fails later at the
	// provider call here, but never as a validation error.
	c := NewClient(testChain(), config.RPCConfig{RequestTimeout: time.Millisecond}, zap.NewNop())

	_, err := c.FetchEvents(context.Background(), 5, 5)
	if errs.IsValidation(err) {
		t.Errorf("single-block window rejected: %v", err)
	}
}

func TestClientPool_CachesPerChain(t *testing.T) {
	pool := NewClientPool(config.RPCConfig{}, zap.NewNop())

	polygon := testChain()
	mainnet := chains.Chain{ID: 1, Name: "ethereum", RPCURL: "https://eth.example", ContractAddress: testCollector}

	a := pool.ForChain(polygon)
	b := pool.ForChain(polygon)
	c := pool.ForChain(mainnet)

	if a != b {
		t.Error("same chain must reuse the cached client")
	}
	if a == c {
		t.Error("different chains must not share a client")
	}
	if a.Chain().ID != 137 || c.Chain().ID != 1 {
		t.Error("clients bound to wrong chains")
	}
}

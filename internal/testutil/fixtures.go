package testutil

import (
	"github.com/vicimikul/lifi-fee-scraper/internal/chains"
	"github.com/vicimikul/lifi-fee-scraper/internal/domain/entities"
)

// Common test addresses
const (
	CollectorAddress  = "0xbd6c7b0d2f68c2b7805d88388319cfb6ecb50ea9"
	USDCAddress       = "0x2791bca1f2de4661ed88a30c99a7a9449aa84174"
	IntegratorAddress = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	TxHashA           = "0xcccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"
	TxHashB           = "0xdddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd"
)

// CreateTestFeeEvent creates a fee event with default values. The chain
// tag is left unset, matching what the chain client returns.
func CreateTestFeeEvent(opts ...FeeEventOption) entities.FeeEvent {
	e := entities.FeeEvent{
		ContractAddress: CollectorAddress,
		Token:           USDCAddress,
		Integrator:      IntegratorAddress,
		IntegratorFee:   "1000000",
		LifiFee:         "250000",
		BlockNumber:     1100,
		TransactionHash: TxHashA,
		LogIndex:        0,
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

type FeeEventOption func(*entities.FeeEvent)

func WithChainID(id int64) FeeEventOption {
	return func(e *entities.FeeEvent) {
		e.ChainID = id
	}
}

func WithBlockNumber(block int64) FeeEventOption {
	return func(e *entities.FeeEvent) {
		e.BlockNumber = block
	}
}

func WithTransactionHash(hash string) FeeEventOption {
	return func(e *entities.FeeEvent) {
		e.TransactionHash = hash
	}
}

func WithLogIndex(idx int) FeeEventOption {
	return func(e *entities.FeeEvent) {
		e.LogIndex = idx
	}
}

func WithIntegrator(addr string) FeeEventOption {
	return func(e *entities.FeeEvent) {
		e.Integrator = addr
	}
}

func WithFees(integratorFee, lifiFee string) FeeEventOption {
	return func(e *entities.FeeEvent) {
		e.IntegratorFee = integratorFee
		e.LifiFee = lifiFee
	}
}

// CreateTestChain creates a chain descriptor for scanner tests.
func CreateTestChain(id int64, name string, startBlock int64) chains.Chain {
	return chains.Chain{
		ID:              id,
		Name:            name,
		RPCURL:          "https://" + name + ".example",
		StartBlock:      startBlock,
		ContractAddress: CollectorAddress,
	}
}

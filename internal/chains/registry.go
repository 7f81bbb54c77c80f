package chains

import (
	"strings"

	"github.com/vicimikul/lifi-fee-scraper/internal/config"
	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

// supported is the closed set of chains the fee collector is deployed on.
var supported = map[int64]string{
	1:    "ethereum",
	10:   "optimism",
	56:   "bsc",
	100:  "gnosis",
	137:  "polygon",
	8453: "base",
}

// Chain describes one enabled chain for the scanner.
type Chain struct {
	ID              int64
	Name            string
	RPCURL          string
	StartBlock      int64
	ContractAddress string
}

// Registry resolves the enabled chains from configuration. Construction
// fails fast on unknown ids or missing RPC endpoints.
type Registry struct {
	chains []Chain
	byID   map[int64]Chain
}

// NewRegistry validates the enabled-chain configuration and builds the
// ordered descriptor list. Order follows ENABLED_CHAINS.
func NewRegistry(cfg config.ChainsConfig) (*Registry, error) {
	contract := strings.ToLower(cfg.ContractAddress)
	if len(contract) != 42 || !strings.HasPrefix(contract, "0x") {
		return nil, errs.NewConfiguration("invalid contract address %q", cfg.ContractAddress)
	}

	r := &Registry{byID: make(map[int64]Chain, len(cfg.Enabled))}
	for _, id := range cfg.Enabled {
		name, ok := supported[id]
		if !ok {
			return nil, errs.NewConfiguration("unsupported chain id %d", id)
		}
		if _, dup := r.byID[id]; dup {
			return nil, errs.NewConfiguration("chain id %d enabled twice", id)
		}

		rpcURL, startBlock := cfg.Endpoint(id)
		if rpcURL == "" {
			return nil, errs.NewConfiguration("chain %s (%d) enabled without an RPC URL", name, id)
		}
		if startBlock < 0 {
			return nil, errs.NewConfiguration("chain %s (%d) has negative start block %d", name, id, startBlock)
		}

		chain := Chain{
			ID:              id,
			Name:            name,
			RPCURL:          rpcURL,
			StartBlock:      startBlock,
			ContractAddress: contract,
		}
		r.chains = append(r.chains, chain)
		r.byID[id] = chain
	}

	return r, nil
}

// Chains returns the enabled chains in configuration order.
func (r *Registry) Chains() []Chain {
	return r.chains
}

// Get returns the descriptor for a chain id, if enabled.
func (r *Registry) Get(id int64) (Chain, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// IsSupported reports whether a chain id belongs to the closed supported set.
func IsSupported(id int64) bool {
	_, ok := supported[id]
	return ok
}

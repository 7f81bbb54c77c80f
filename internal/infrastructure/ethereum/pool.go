package ethereum

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vicimikul/lifi-fee-scraper/internal/chains"
	"github.com/vicimikul/lifi-fee-scraper/internal/config"
)

// ClientPool hands out one Client per chain. Clients are created on first
// request and cached; providers are never shared across chains.
type ClientPool struct {
	cfg    config.RPCConfig
	logger *zap.Logger

	mu      sync.Mutex
	clients map[int64]*Client
}

// NewClientPool creates an empty pool.
func NewClientPool(cfg config.RPCConfig, logger *zap.Logger) *ClientPool {
	return &ClientPool{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[int64]*Client),
	}
}

// ForChain returns the cached client for a chain, creating it if needed.
func (p *ClientPool) ForChain(chain chains.Chain) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[chain.ID]; ok {
		return c
	}
	c := NewClient(chain, p.cfg, p.logger)
	p.clients[chain.ID] = c
	return c
}

// Close releases every cached connection.
func (p *ClientPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		c.Close()
	}
}

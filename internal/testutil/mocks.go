package testutil

import (
	"context"
	"sync"

	"github.com/vicimikul/lifi-fee-scraper/internal/domain/entities"
)

// MockCall records one mock invocation.
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockFeeEventRepository is an in-memory FeeEventRepository. It
// deduplicates on the identity triple the way the unique index does.
type MockFeeEventRepository struct {
	mu     sync.RWMutex
	events map[string]entities.FeeEvent

	// Function hooks for custom behavior
	InsertManyFunc       func(ctx context.Context, events []entities.FeeEvent, chainID int64) error
	FindByIntegratorFunc func(ctx context.Context, chainID int64, integrator string) ([]entities.FeeEvent, error)

	// Call tracking
	Calls []MockCall
}

func NewMockFeeEventRepository() *MockFeeEventRepository {
	return &MockFeeEventRepository{
		events: make(map[string]entities.FeeEvent),
	}
}

func (m *MockFeeEventRepository) InsertMany(ctx context.Context, events []entities.FeeEvent, chainID int64) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "InsertMany", Args: []interface{}{events, chainID}})
	m.mu.Unlock()

	if m.InsertManyFunc != nil {
		return m.InsertManyFunc(ctx, events, chainID)
	}

	if len(events) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range events {
		event := events[i]
		if err := event.Validate(); err != nil {
			return err
		}
		event.ChainID = chainID
		key := event.Identity().Key()
		if _, dup := m.events[key]; dup {
			continue
		}
		m.events[key] = event
	}
	return nil
}

func (m *MockFeeEventRepository) FindByIntegrator(ctx context.Context, chainID int64, integrator string) ([]entities.FeeEvent, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FindByIntegrator", Args: []interface{}{chainID, integrator}})
	m.mu.Unlock()

	if m.FindByIntegratorFunc != nil {
		return m.FindByIntegratorFunc(ctx, chainID, integrator)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.FeeEvent, 0)
	for _, e := range m.events {
		if e.ChainID == chainID && e.Integrator == integrator {
			result = append(result, e)
		}
	}
	return result, nil
}

// Stored returns a snapshot of all persisted events.
func (m *MockFeeEventRepository) Stored() []entities.FeeEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.FeeEvent, 0, len(m.events))
	for _, e := range m.events {
		result = append(result, e)
	}
	return result
}

// Seed stores events directly, bypassing validation.
func (m *MockFeeEventRepository) Seed(events ...entities.FeeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		m.events[e.Identity().Key()] = e
	}
}

// MockProgressRepository is an in-memory ProgressRepository.
type MockProgressRepository struct {
	mu       sync.RWMutex
	progress map[int64]int64

	// Function hooks for custom behavior
	GetFunc func(ctx context.Context, chainID int64) (int64, bool, error)
	SetFunc func(ctx context.Context, chainID int64, blockNumber int64) error

	// Ordered record of Set values per chain
	SetHistory map[int64][]int64
}

func NewMockProgressRepository() *MockProgressRepository {
	return &MockProgressRepository{
		progress:   make(map[int64]int64),
		SetHistory: make(map[int64][]int64),
	}
}

func (m *MockProgressRepository) Get(ctx context.Context, chainID int64) (int64, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, chainID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	block, found := m.progress[chainID]
	return block, found, nil
}

func (m *MockProgressRepository) Set(ctx context.Context, chainID int64, blockNumber int64) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, chainID, blockNumber)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[chainID] = blockNumber
	m.SetHistory[chainID] = append(m.SetHistory[chainID], blockNumber)
	return nil
}

// Preload sets a cursor without recording history.
func (m *MockProgressRepository) Preload(chainID, blockNumber int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[chainID] = blockNumber
}

// Cursor returns the stored cursor for a chain.
func (m *MockProgressRepository) Cursor(chainID int64) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	block, found := m.progress[chainID]
	return block, found
}

// FetchWindow records one FetchEvents invocation.
type FetchWindow struct {
	From int64
	To   int64
}

// MockChainReader is a scripted chain client. Events are served from
// Events by block range; Head is the reported chain head.
type MockChainReader struct {
	mu     sync.Mutex
	Head   int64
	Events []entities.FeeEvent

	// Function hooks for custom behavior
	LatestBlockFunc func(ctx context.Context) (int64, error)
	FetchEventsFunc func(ctx context.Context, from, to int64) ([]entities.FeeEvent, error)

	// Call tracking
	FetchCalls []FetchWindow
}

func NewMockChainReader(head int64, events ...entities.FeeEvent) *MockChainReader {
	return &MockChainReader{Head: head, Events: events}
}

func (m *MockChainReader) LatestBlock(ctx context.Context) (int64, error) {
	if m.LatestBlockFunc != nil {
		return m.LatestBlockFunc(ctx)
	}
	return m.Head, nil
}

func (m *MockChainReader) FetchEvents(ctx context.Context, from, to int64) ([]entities.FeeEvent, error) {
	m.mu.Lock()
	m.FetchCalls = append(m.FetchCalls, FetchWindow{From: from, To: to})
	m.mu.Unlock()

	if m.FetchEventsFunc != nil {
		return m.FetchEventsFunc(ctx, from, to)
	}

	result := make([]entities.FeeEvent, 0)
	for _, e := range m.Events {
		if e.BlockNumber >= from && e.BlockNumber <= to {
			result = append(result, e)
		}
	}
	return result, nil
}

// Windows returns a snapshot of the recorded fetch windows.
func (m *MockChainReader) Windows() []FetchWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FetchWindow(nil), m.FetchCalls...)
}

package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vicimikul/lifi-fee-scraper/internal/domain/repositories"
	"github.com/vicimikul/lifi-fee-scraper/internal/infrastructure/cache"
)

// EventsService provides the read path over stored fee events.
type EventsService struct {
	eventRepo repositories.FeeEventRepository
	cache     *cache.RedisCache
	logger    *zap.Logger
}

// NewEventsService creates a new events service. cache may be nil.
func NewEventsService(eventRepo repositories.FeeEventRepository, cache *cache.RedisCache, logger *zap.Logger) *EventsService {
	return &EventsService{
		eventRepo: eventRepo,
		cache:     cache,
		logger:    logger,
	}
}

// FeeEventDTO is the API representation of a stored event.
type FeeEventDTO struct {
	ChainID         int64  `json:"chainId"`
	ContractAddress string `json:"contractAddress"`
	Token           string `json:"token"`
	Integrator      string `json:"integrator"`
	IntegratorFee   string `json:"integratorFee"`
	LifiFee         string `json:"lifiFee"`
	BlockNumber     int64  `json:"blockNumber"`
	TransactionHash string `json:"transactionHash"`
	LogIndex        int    `json:"logIndex"`
}

// EventsResponse wraps the events list for the API.
type EventsResponse struct {
	Events []FeeEventDTO `json:"events"`
}

// GetByIntegrator returns the stored events for one integrator on one
// chain. Cache failures are logged and never surfaced.
func (s *EventsService) GetByIntegrator(ctx context.Context, chainID int64, integrator string) (*EventsResponse, error) {
	integrator = strings.ToLower(integrator)
	cacheKey := fmt.Sprintf("events:integrator:%d:%s", chainID, integrator)

	if s.cache != nil {
		var cached EventsResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if err != cache.ErrCacheMiss {
			s.logger.Warn("Cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	events, err := s.eventRepo.FindByIntegrator(ctx, chainID, integrator)
	if err != nil {
		return nil, err
	}

	response := &EventsResponse{Events: make([]FeeEventDTO, 0, len(events))}
	for i := range events {
		response.Events = append(response.Events, FeeEventDTO{
			ChainID:         events[i].ChainID,
			ContractAddress: events[i].ContractAddress,
			Token:           events[i].Token,
			Integrator:      events[i].Integrator,
			IntegratorFee:   events[i].IntegratorFee,
			LifiFee:         events[i].LifiFee,
			BlockNumber:     events[i].BlockNumber,
			TransactionHash: events[i].TransactionHash,
			LogIndex:        events[i].LogIndex,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	return response, nil
}

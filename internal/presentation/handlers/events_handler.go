package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vicimikul/lifi-fee-scraper/internal/application/services"
	"github.com/vicimikul/lifi-fee-scraper/internal/chains"
	"github.com/vicimikul/lifi-fee-scraper/internal/domain/entities"
)

// EventsHandler handles HTTP requests for stored fee events
type EventsHandler struct {
	service *services.EventsService
	logger  *zap.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(service *services.EventsService, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the events routes
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/events/integrator/{chainId}/{integrator}", h.GetByIntegrator)
}

type eventsMeta struct {
	Count     int    `json:"count"`
	Timestamp string `json:"timestamp"`
}

type eventsEnvelope struct {
	Success bool                    `json:"success"`
	Data    services.EventsResponse `json:"data"`
	Meta    eventsMeta              `json:"meta"`
}

type requestFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// GetByIntegrator handles GET /events/integrator/{chainId}/{integrator}
func (h *EventsHandler) GetByIntegrator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chainID, err := strconv.ParseInt(chi.URLParam(r, "chainId"), 10, 64)
	if err != nil || !chains.IsSupported(chainID) {
		h.respondBadRequest(w, "invalid or unsupported chain id")
		return
	}

	integrator := strings.ToLower(chi.URLParam(r, "integrator"))
	if !entities.IsAddress(integrator) {
		h.respondBadRequest(w, "invalid integrator address")
		return
	}

	response, err := h.service.GetByIntegrator(ctx, chainID, integrator)
	if err != nil {
		h.logger.Error("Failed to get events by integrator",
			zap.Int64("chain_id", chainID),
			zap.String("integrator", integrator),
			zap.Error(err),
		)
		h.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to get events"})
		return
	}

	h.respondJSON(w, http.StatusOK, eventsEnvelope{
		Success: true,
		Data:    *response,
		Meta: eventsMeta{
			Count:     len(response.Events),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (h *EventsHandler) respondBadRequest(w http.ResponseWriter, message string) {
	h.respondJSON(w, http.StatusBadRequest, requestFailure{Success: false, Error: message})
}

func (h *EventsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vicimikul/lifi-fee-scraper/internal/application/services"
	"github.com/vicimikul/lifi-fee-scraper/internal/domain/entities"
	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
	"github.com/vicimikul/lifi-fee-scraper/internal/testutil"
)

func newEventsRouter(eventRepo *testutil.MockFeeEventRepository) *chi.Mux {
	service := services.NewEventsService(eventRepo, nil, zap.NewNop())
	handler := NewEventsHandler(service, zap.NewNop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestGetByIntegrator_Success(t *testing.T) {
	eventRepo := testutil.NewMockFeeEventRepository()
	eventRepo.Seed(
		testutil.CreateTestFeeEvent(testutil.WithChainID(1)),
		testutil.CreateTestFeeEvent(testutil.WithChainID(137), testutil.WithTransactionHash(testutil.TxHashB)),
	)
	router := newEventsRouter(eventRepo)

	req := httptest.NewRequest(http.MethodGet, "/events/integrator/137/"+testutil.IntegratorAddress, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Events []services.FeeEventDTO `json:"events"`
		} `json:"data"`
		Meta struct {
			Count     int    `json:"count"`
			Timestamp string `json:"timestamp"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if !body.Success {
		t.Error("success = false")
	}
	if len(body.Data.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(body.Data.Events))
	}
	if body.Data.Events[0].ChainID != 137 {
		t.Errorf("ChainID = %d, want 137", body.Data.Events[0].ChainID)
	}
	if body.Meta.Count != 1 {
		t.Errorf("meta.count = %d, want 1", body.Meta.Count)
	}
	if body.Meta.Timestamp == "" {
		t.Error("meta.timestamp missing")
	}
}

func TestGetByIntegrator_UppercaseAddressAccepted(t *testing.T) {
	eventRepo := testutil.NewMockFeeEventRepository()
	eventRepo.Seed(testutil.CreateTestFeeEvent(testutil.WithChainID(137)))
	router := newEventsRouter(eventRepo)

	req := httptest.NewRequest(http.MethodGet, "/events/integrator/137/0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGetByIntegrator_InvalidIntegrator(t *testing.T) {
	router := newEventsRouter(testutil.NewMockFeeEventRepository())

	req := httptest.NewRequest(http.MethodGet, "/events/integrator/137/invalid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Success {
		t.Error("success = true on failure")
	}
	if !strings.Contains(body.Error, "integrator address") {
		t.Errorf("error = %q, should mention integrator address", body.Error)
	}
}

func TestGetByIntegrator_InvalidChain(t *testing.T) {
	router := newEventsRouter(testutil.NewMockFeeEventRepository())

	for _, path := range []string{
		"/events/integrator/999/" + testutil.IntegratorAddress,
		"/events/integrator/abc/" + testutil.IntegratorAddress,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
			continue
		}

		var body struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if !strings.Contains(body.Error, "chain") {
			t.Errorf("error = %q, should mention chain", body.Error)
		}
	}
}

func TestGetByIntegrator_InternalError(t *testing.T) {
	eventRepo := testutil.NewMockFeeEventRepository()
	eventRepo.FindByIntegratorFunc = func(ctx context.Context, chainID int64, integrator string) ([]entities.FeeEvent, error) {
		return nil, errs.NewDatabase("find by integrator", context.DeadlineExceeded)
	}
	router := newEventsRouter(eventRepo)

	req := httptest.NewRequest(http.MethodGet, "/events/integrator/137/"+testutil.IntegratorAddress, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := body["error"]; !ok {
		t.Error("500 body should carry an error message")
	}
}

func TestGetByIntegrator_EmptyResult(t *testing.T) {
	router := newEventsRouter(testutil.NewMockFeeEventRepository())

	req := httptest.NewRequest(http.MethodGet, "/events/integrator/137/"+testutil.IntegratorAddress, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"events":[]`) {
		t.Errorf("body = %s, want empty events array", rec.Body.String())
	}
}

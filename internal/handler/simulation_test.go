package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritax/internal/bareme"
	"heritax/internal/domain"
	"heritax/internal/observability"
	"heritax/internal/simulation"
	"heritax/pkg/logger"
	"heritax/pkg/validator"
)

func newTestSimulationHandler(t *testing.T) (*SimulationHandler, *observability.Metrics) {
	t.Helper()
	registry, err := bareme.NewRegistry()
	require.NoError(t, err)
	engine := simulation.NewEngine(registry)
	metrics := observability.NewMetrics()
	h := NewSimulationHandler(engine, registry, validator.New(), metrics, logger.NewNop())
	return h, metrics
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func postSimulation(h *SimulationHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Simulate(rec, req)
	return rec
}

func TestSimulate_ComputesEstimate(t *testing.T) {
	h, metrics := newTestSimulationHandler(t)

	rec := postSimulation(h, `{
		"transmission_type": "gift",
		"relationship_category": "child",
		"transfer_amount": 300000,
		"prior_gifts_amount": 0
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result domain.SimulationResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))

	assert.Equal(t, domain.TransmissionGift, result.TransmissionType)
	assert.Equal(t, domain.CategoryChild, result.RelationshipCategory)
	assert.True(t, result.TaxDue.Equal(dec("38194.35")), "tax due: %s", result.TaxDue)
	assert.True(t, result.NetAmountReceived.Equal(dec("261805.65")), "net: %s", result.NetAmountReceived)
	require.Len(t, result.Breakdown, 2)

	assert.Equal(t, int64(1), metrics.Snapshot().SimulationsTotal)
}

func TestSimulate_SpouseInheritanceExempt(t *testing.T) {
	h, _ := newTestSimulationHandler(t)

	rec := postSimulation(h, `{
		"transmission_type": "succession",
		"relationship_category": "spouse",
		"transfer_amount": 500000
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.SimulationResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))

	assert.True(t, result.Exempt)
	assert.True(t, result.TaxDue.IsZero())
	assert.True(t, result.NetAmountReceived.Equal(dec("500000")))
	require.Len(t, result.Breakdown, 1)
}

func TestSimulate_UnknownCategoryRejected(t *testing.T) {
	h, metrics := newTestSimulationHandler(t)

	rec := postSimulation(h, `{
		"transmission_type": "gift",
		"relationship_category": "cousin",
		"transfer_amount": 1000
	}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp["error"], "not recognized")

	assert.Equal(t, int64(1), metrics.Snapshot().ComputeErrors)
	assert.Equal(t, int64(0), metrics.Snapshot().SimulationsTotal)
}

func TestSimulate_NegativeAmountFailsValidation(t *testing.T) {
	h, _ := newTestSimulationHandler(t)

	rec := postSimulation(h, `{
		"transmission_type": "gift",
		"relationship_category": "child",
		"transfer_amount": -5
	}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error            string            `json:"error"`
		ValidationErrors map[string]string `json:"validation_errors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.ValidationErrors, "TransferAmount")
}

func TestSimulate_MissingFieldsFailValidation(t *testing.T) {
	h, _ := newTestSimulationHandler(t)

	rec := postSimulation(h, `{"transfer_amount": 1000}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		ValidationErrors map[string]string `json:"validation_errors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.ValidationErrors, "TransmissionType")
	assert.Contains(t, resp.ValidationErrors, "RelationshipCategory")
}

func TestSimulate_EmptyBody(t *testing.T) {
	h, _ := newTestSimulationHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", nil)
	rec := httptest.NewRecorder()
	h.Simulate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request body is required")
}

func TestSimulate_UnknownFieldRejected(t *testing.T) {
	h, _ := newTestSimulationHandler(t)

	rec := postSimulation(h, `{
		"transmission_type": "gift",
		"relationship_category": "child",
		"transfer_amount": 1000,
		"estate_total": 99
	}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

func TestSimulate_AmountAcceptedAsStringOrNumber(t *testing.T) {
	h, _ := newTestSimulationHandler(t)

	asNumber := postSimulation(h, `{"transmission_type":"gift","relationship_category":"child","transfer_amount":50000}`)
	asString := postSimulation(h, `{"transmission_type":"gift","relationship_category":"child","transfer_amount":"50000"}`)

	require.Equal(t, http.StatusOK, asNumber.Code)
	require.Equal(t, http.StatusOK, asString.Code)
	assert.JSONEq(t, asNumber.Body.String(), asString.Body.String())
}

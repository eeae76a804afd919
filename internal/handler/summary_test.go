package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"heritax/internal/domain"
	"heritax/internal/observability"
	"heritax/internal/summary"
	apperrors "heritax/pkg/errors"
	"heritax/pkg/logger"
	"heritax/pkg/validator"
)

type MockSummaryService struct {
	mock.Mock
}

func (m *MockSummaryService) Send(ctx context.Context, recipient string, in domain.SimulationInput) (*summary.Receipt, error) {
	args := m.Called(ctx, recipient, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*summary.Receipt), args.Error(1)
}

func newSummaryHandler(svc summary.Service) *SummaryHandler {
	return NewSummaryHandler(svc, validator.New(), observability.NewMetrics(), logger.NewNop())
}

func postEmailSummary(h *SummaryHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations/email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.EmailSummary(rec, req)
	return rec
}

const validEmailBody = `{
	"recipient": "heir@example.com",
	"transmission_type": "gift",
	"relationship_category": "child",
	"transfer_amount": 300000,
	"prior_gifts_amount": 0
}`

func TestEmailSummary_SentReceipt(t *testing.T) {
	svc := new(MockSummaryService)
	svc.On("Send", mock.Anything, "heir@example.com", mock.Anything).
		Return(&summary.Receipt{
			ID:        uuid.New(),
			Recipient: "heir@example.com",
			Status:    domain.DeliverySent,
			Message:   "Récapitulatif envoyé.",
			CreatedAt: time.Now().UTC(),
		}, nil)

	rec := postEmailSummary(newSummaryHandler(svc), validEmailBody)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var receipt summary.Receipt
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&receipt))
	assert.Equal(t, domain.DeliverySent, receipt.Status)
	assert.Equal(t, "heir@example.com", receipt.Recipient)
	assert.NotEqual(t, uuid.Nil, receipt.ID)

	svc.AssertExpectations(t)
}

func TestEmailSummary_DeliveryFailureIsStillOK(t *testing.T) {
	svc := new(MockSummaryService)
	svc.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(&summary.Receipt{
			ID:        uuid.New(),
			Recipient: "heir@example.com",
			Status:    domain.DeliveryFailed,
			Message:   "L'envoi du récapitulatif a échoué. Vous pouvez réessayer dans quelques instants.",
			CreatedAt: time.Now().UTC(),
		}, nil)

	rec := postEmailSummary(newSummaryHandler(svc), validEmailBody)

	// The estimate stands even when the relay is down, so this is not an
	// error response.
	require.Equal(t, http.StatusOK, rec.Code)

	var receipt summary.Receipt
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&receipt))
	assert.Equal(t, domain.DeliveryFailed, receipt.Status)
	assert.Contains(t, receipt.Message, "réessayer")
}

func TestEmailSummary_InvalidRecipient(t *testing.T) {
	svc := new(MockSummaryService)
	svc.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrValidationFailure)

	rec := postEmailSummary(newSummaryHandler(svc), strings.Replace(validEmailBody, "heir@example.com", "not-an-address", 1))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid")
}

func TestEmailSummary_MissingRecipient(t *testing.T) {
	svc := new(MockSummaryService)

	rec := postEmailSummary(newSummaryHandler(svc), `{
		"transmission_type": "gift",
		"relationship_category": "child",
		"transfer_amount": 1000
	}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		ValidationErrors map[string]string `json:"validation_errors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.ValidationErrors, "Recipient")

	svc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmailSummary_ComputeErrorIsBadRequest(t *testing.T) {
	svc := new(MockSummaryService)
	svc.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrInvalidCategory)

	rec := postEmailSummary(newSummaryHandler(svc), strings.Replace(validEmailBody, "child", "cousin", 1))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not recognized")
}

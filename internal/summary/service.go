// Package summary renders and delivers the email recap of a computed
// estimate. Delivery is best-effort: a failed send produces a "failed"
// receipt with a retry-permitting message, never an error, and never
// invalidates the estimate itself.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"heritax/internal/domain"
	"heritax/internal/observability"
	"heritax/internal/resilience"
	"heritax/internal/simulation"
	apperrors "heritax/pkg/errors"
	"heritax/pkg/logger"
	"heritax/pkg/moneyfmt"
)

// MailSender delivers one rendered HTML message.
type MailSender interface {
	Send(to, subject, body string) error
}

// Config bounds delivery attempts.
type Config struct {
	DeliveryTimeout time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxInFlight     int
}

// Receipt reports the outcome of one delivery attempt back to the caller.
type Receipt struct {
	ID        uuid.UUID             `json:"id"`
	Recipient string                `json:"recipient"`
	Status    domain.DeliveryStatus `json:"status"`
	Message   string                `json:"message"`
	CreatedAt time.Time             `json:"created_at"`
}

// Service defines the summary delivery interface.
type Service interface {
	Send(ctx context.Context, recipient string, in domain.SimulationInput) (*Receipt, error)
}

// DefaultService recomputes the estimate, renders the French summary, and
// hands it to the mail transport behind a circuit breaker with bounded
// retries.
type DefaultService struct {
	engine   *simulation.Engine
	mailer   MailSender
	breaker  *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   logger.Logger
	cfg      Config
}

// NewService creates a summary service around the given engine and mail
// transport.
func NewService(engine *simulation.Engine, mailer MailSender, metrics *observability.Metrics, log logger.Logger, cfg Config) *DefaultService {
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 15 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}

	return &DefaultService{
		engine:   engine,
		mailer:   mailer,
		breaker:  resilience.NewCircuitBreaker("summary-mail"),
		bulkhead: resilience.NewBulkhead(cfg.MaxInFlight),
		metrics:  metrics,
		logger:   log,
		cfg:      cfg,
	}
}

// ValidateRecipient applies the pre-send address check: one "@" with a
// dot-separated, domain-like suffix after it. It runs before any network
// call so malformed addresses short-circuit locally.
func ValidateRecipient(addr string) error {
	addr = strings.TrimSpace(addr)
	if strings.ContainsAny(addr, " \t") {
		return apperrors.ErrValidationFailure
	}

	at := strings.LastIndex(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return apperrors.ErrValidationFailure
	}

	host := addr[at+1:]
	dot := strings.LastIndex(host, ".")
	if dot <= 0 || dot == len(host)-1 {
		return apperrors.ErrValidationFailure
	}

	return nil
}

// Send recomputes the estimate for the given input and mails the rendered
// summary to recipient. Validation and computation errors are returned to
// the caller; delivery failures are absorbed into a "failed" receipt.
func (s *DefaultService) Send(ctx context.Context, recipient string, in domain.SimulationInput) (*Receipt, error) {
	recipient = strings.TrimSpace(recipient)
	if err := ValidateRecipient(recipient); err != nil {
		s.metrics.IncrEmail(observability.EmailRejected)
		return nil, err
	}

	result, err := s.engine.Compute(in)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		ID:        uuid.New(),
		Recipient: recipient,
		CreatedAt: time.Now().UTC(),
	}

	subject := subjectFor(result)
	body := renderBody(in, result)

	if err := s.deliver(ctx, recipient, subject, body); err != nil {
		s.logger.Warn("Summary delivery failed", map[string]interface{}{
			"receipt_id": receipt.ID,
			"recipient":  recipient,
			"error":      err.Error(),
		})
		s.metrics.IncrEmail(observability.EmailFailed)

		receipt.Status = domain.DeliveryFailed
		receipt.Message = "L'envoi du récapitulatif a échoué. Vous pouvez réessayer dans quelques instants."
		return receipt, nil
	}

	s.logger.Info("Summary delivered", map[string]interface{}{
		"receipt_id": receipt.ID,
		"recipient":  recipient,
		"category":   result.RelationshipCategory,
	})
	s.metrics.IncrEmail(observability.EmailSent)

	receipt.Status = domain.DeliverySent
	receipt.Message = "Récapitulatif envoyé."
	return receipt, nil
}

// deliver pushes the message through the bulkhead, breaker, and retry
// policy, bounded by the configured delivery timeout so a slow relay never
// hangs the caller.
func (s *DefaultService) deliver(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DeliveryTimeout)
	defer cancel()

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrDeliveryFailure, "delivery queue full")
	}
	defer s.bulkhead.Release()

	start := time.Now()
	defer func() {
		s.metrics.RecordDuration("summary_delivery", time.Since(start))
	}()

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, resilience.RetryWithBackoff(ctx, resilience.Config{
			MaxRetries:     s.cfg.MaxRetries,
			InitialBackoff: s.cfg.RetryBackoff,
		}, func() error {
			return s.mailer.Send(to, subject, body)
		})
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDeliveryFailure, err.Error())
	}
	return nil
}

func subjectFor(result *domain.SimulationResult) string {
	return fmt.Sprintf("Votre estimation de droits de %s", strings.ToLower(result.TransmissionType.Label()))
}

// renderBody builds the HTML summary: transfer parameters first, then the
// computed amounts, all in French currency formatting.
func renderBody(in domain.SimulationInput, result *domain.SimulationResult) string {
	rows := []struct {
		label string
		value string
	}{
		{"Type de transmission", result.TransmissionType.Label()},
		{"Lien de parenté", result.RelationshipCategory.Label()},
		{"Montant transmis", moneyfmt.Euros(in.TransferAmount)},
		{"Donations antérieures", moneyfmt.Euros(in.PriorGiftsAmount)},
		{"Abattement appliqué", moneyfmt.Euros(result.AllowanceApplied)},
		{"Base taxable", moneyfmt.Euros(result.TaxableBase)},
		{"Droits estimés", moneyfmt.Euros(result.TaxDue)},
		{"Montant net reçu", moneyfmt.Euros(result.NetAmountReceived)},
	}

	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(fmt.Sprintf("<h2>Estimation de vos droits de %s</h2>", strings.ToLower(result.TransmissionType.Label())))

	if result.Exempt {
		b.WriteString("<p><strong>Exonération totale :</strong> les successions entre conjoints et partenaires de PACS ne donnent lieu à aucun droit.</p>")
	}

	b.WriteString(`<table border="0" cellpadding="6">`)
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td align=\"right\"><strong>%s</strong></td></tr>", row.label, row.value))
	}
	b.WriteString("</table>")

	b.WriteString("<p><em>Estimation indicative fondée sur un barème simplifié, sans valeur d'avis fiscal.</em></p>")
	b.WriteString("</body></html>")
	return b.String()
}

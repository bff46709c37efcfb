package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/creativespark/fablab-booking/internal/config"
)

// EmailRequest is the payload of the workshop email relay's
// send-equipment-booking endpoint.
type EmailRequest struct {
	EquipmentName string  `json:"equipment_name"`
	BookingDate   string  `json:"booking_date"`
	BookingTime   string  `json:"booking_time"`
	Duration      float64 `json:"duration"`
	Recipient     string  `json:"recipient"`
	ProjectName   string  `json:"project_name"`
	ProjectID     string  `json:"project_id"`
	ClientName    string  `json:"client_name"`
	IsStaffEmail  bool    `json:"is_staff_email"`
	UserNotes     string  `json:"user_notes"`
}

// EmailSender delivers booking emails. Implementations must be safe for
// concurrent use.
type EmailSender interface {
	Send(ctx context.Context, req EmailRequest) error
}

// HTTPSender posts email requests to the relay service.
type HTTPSender struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSender(cfg config.Email) *HTTPSender {
	return &HTTPSender{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSender) Send(ctx context.Context, req EmailRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	url := s.baseURL + "/v1/email/send-equipment-booking"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("email relay unreachable: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email relay returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopSender is used when email delivery is disabled in configuration.
type NoopSender struct{}

func (NoopSender) Send(_ context.Context, req EmailRequest) error {
	log.WithFields(log.Fields{
		"recipient": req.Recipient,
		"equipment": req.EquipmentName,
	}).Debug("Email delivery disabled, skipping")
	return nil
}

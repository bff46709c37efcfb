package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativespark/fablab-booking/internal/config"
	"github.com/creativespark/fablab-booking/internal/event_bus"
)

func TestHTTPSender_Send(t *testing.T) {
	var received EmailRequest
	var gotPath, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(config.Email{BaseURL: server.URL})
	err := sender.Send(context.Background(), EmailRequest{
		EquipmentName: "Laser Cutter",
		BookingDate:   "2024-06-10",
		BookingTime:   "10:00",
		Duration:      1.0,
		Recipient:     "alice@example.com",
		ProjectName:   "FabLab User Confirmation",
		ProjectID:     "BK0001",
		ClientName:    "Alice Murphy",
		UserNotes:     "cutting birch ply",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/email/send-equipment-booking", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Laser Cutter", received.EquipmentName)
	assert.Equal(t, "alice@example.com", received.Recipient)
	assert.False(t, received.IsStaffEmail)
}

func TestHTTPSender_Send_RelayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewHTTPSender(config.Email{BaseURL: server.URL})
	err := sender.Send(context.Background(), EmailRequest{Recipient: "alice@example.com"})
	assert.Error(t, err)
}

func TestHTTPSender_Send_Unreachable(t *testing.T) {
	sender := NewHTTPSender(config.Email{BaseURL: "http://127.0.0.1:1"})
	err := sender.Send(context.Background(), EmailRequest{Recipient: "alice@example.com"})
	assert.Error(t, err)
}

func TestNotifier_BookingCreated_SendsBothEmails(t *testing.T) {
	var requests []EmailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req EmailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Email{
		BaseURL:                server.URL,
		FacilitiesManagerEmail: "carl@creativespark.ie",
		FacilitiesManagerName:  "Carl McAteer",
	}
	bus := event_bus.NewEventBus()
	NewNotifier(NewHTTPSender(cfg), cfg).Register(bus)

	err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EventBookingCreated, event_bus.BookingCreated{
		BookingID:     "BK0001",
		EquipmentID:   "laser_cutter",
		EquipmentName: "Laser Cutter",
		Date:          "2024-06-10",
		StartTime:     "10:00",
		EndTime:       "11:00",
		DurationHours: 1.0,
		UserName:      "Alice Murphy",
		UserEmail:     "alice@example.com",
		Notes:         "cutting birch ply",
	}))
	require.NoError(t, err)

	require.Len(t, requests, 2)

	staff := requests[0]
	assert.Equal(t, "carl@creativespark.ie", staff.Recipient)
	assert.Equal(t, "FabLab Staff Notification", staff.ProjectName)
	assert.True(t, staff.IsStaffEmail)
	assert.Equal(t, "BK0001", staff.ProjectID)
	assert.Equal(t, "Alice Murphy", staff.ClientName)
	assert.Empty(t, staff.UserNotes, "the user's notes belong to the confirmation email only")

	userMail := requests[1]
	assert.Equal(t, "alice@example.com", userMail.Recipient)
	assert.Equal(t, "FabLab User Confirmation", userMail.ProjectName)
	assert.False(t, userMail.IsStaffEmail)
	assert.Equal(t, "cutting birch ply", userMail.UserNotes)
}

func TestNotifier_BookingCancelled_NotifiesStaff(t *testing.T) {
	var requests []EmailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req EmailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Email{BaseURL: server.URL, FacilitiesManagerEmail: "carl@creativespark.ie"}
	bus := event_bus.NewEventBus()
	NewNotifier(NewHTTPSender(cfg), cfg).Register(bus)

	err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EventBookingCancelled, event_bus.BookingCancelled{
		BookingID:     "BK0001",
		EquipmentID:   "laser_cutter",
		EquipmentName: "Laser Cutter",
		Date:          "2024-06-10",
		StartTime:     "10:00",
		UserEmail:     "alice@example.com",
	}))
	require.NoError(t, err)

	require.Len(t, requests, 1)
	assert.Equal(t, "carl@creativespark.ie", requests[0].Recipient)
	assert.True(t, requests[0].IsStaffEmail)
}

func TestNotifier_RelayFailurePropagatesToPublisher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := config.Email{BaseURL: server.URL, FacilitiesManagerEmail: "carl@creativespark.ie"}
	bus := event_bus.NewEventBus()
	NewNotifier(NewHTTPSender(cfg), cfg).Register(bus)

	err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.EventBookingCreated, event_bus.BookingCreated{
		BookingID: "BK0001",
		UserEmail: "alice@example.com",
	}))
	assert.Error(t, err)
}

func TestNoopSender(t *testing.T) {
	err := NoopSender{}.Send(context.Background(), EmailRequest{Recipient: "alice@example.com"})
	assert.NoError(t, err)
}

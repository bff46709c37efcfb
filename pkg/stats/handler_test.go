package stats

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativespark/fablab-booking/internal/utils"
	"github.com/creativespark/fablab-booking/pkg/user"
)

const adminEmail = "carl@creativespark.ie"

func adminRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := user.WithUser(req.Context(), user.User{Name: "Carl McAteer", Email: adminEmail})
	return req.WithContext(ctx)
}

func TestHandler_AdminGate(t *testing.T) {
	svc, _ := newStatsService(t)
	h := NewHandler(svc, adminEmail)

	// No identity at all.
	rec := httptest.NewRecorder()
	h.Users(rec, httptest.NewRequest("GET", "/api/stats/users", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An ordinary member.
	req := httptest.NewRequest("GET", "/api/stats/users", nil)
	ctx := user.WithUser(req.Context(), user.User{Name: "Alice Murphy", Email: "alice@example.com"})
	rec = httptest.NewRecorder()
	h.Users(rec, req.WithContext(ctx))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The facilities manager.
	rec = httptest.NewRecorder()
	h.Users(rec, adminRequest("GET", "/api/stats/users"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_EquipmentAndWeek(t *testing.T) {
	svc, bookings := newStatsService(t)
	mustCreate(t, bookings, "laser_cutter", "Laser Cutter", "2024-06-10", "10:00", 1.0, "alice@example.com")
	h := NewHandler(svc, adminEmail)

	rec := httptest.NewRecorder()
	h.Equipment(rec, adminRequest("GET", "/api/stats/equipment"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "laser_cutter")

	rec = httptest.NewRecorder()
	h.Week(rec, adminRequest("GET", "/api/stats/week?date=2024-06-10"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2024-06-10")
}

func TestHandler_Week_BadDateIs400(t *testing.T) {
	svc, _ := newStatsService(t)
	h := NewHandler(svc, adminEmail)

	rec := httptest.NewRecorder()
	h.Week(rec, adminRequest("GET", "/api/stats/week?date=not-a-date"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Export_FilenameFollowsClock(t *testing.T) {
	svc, bookings := newStatsService(t)
	mustCreate(t, bookings, "laser_cutter", "Laser Cutter", "2024-06-10", "10:00", 1.0, "alice@example.com")
	h := NewHandler(svc, adminEmail)
	h.clock = &utils.MockClock{FixedNow: statsNow}

	rec := httptest.NewRecorder()
	h.Export(rec, adminRequest("GET", "/api/export/bookings"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="bookings-2024-06-14.csv"`, rec.Header().Get("Content-Disposition"))
}

func TestHandler_Export(t *testing.T) {
	svc, bookings := newStatsService(t)
	mustCreate(t, bookings, "laser_cutter", "Laser Cutter", "2024-06-10", "10:00", 1.0, "alice@example.com")
	h := NewHandler(svc, adminEmail)

	rec := httptest.NewRecorder()
	h.Export(rec, adminRequest("GET", "/api/export/bookings"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "id,equipment_id,equipment_name")
}

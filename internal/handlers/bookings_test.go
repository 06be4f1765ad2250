package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stayhub/stayhub-backend/internal/booking"
	"github.com/stayhub/stayhub-backend/internal/models"
	"github.com/stayhub/stayhub-backend/pkg/apperrors"
)

type stubDirectory struct {
	props map[uint]booking.PropertyInfo
}

func (d *stubDirectory) GetProperty(ctx context.Context, id uint) (booking.PropertyInfo, error) {
	p, ok := d.props[id]
	if !ok {
		return booking.PropertyInfo{}, apperrors.New(apperrors.CodeNotFound, "property not found")
	}
	return p, nil
}

type dropSink struct{}

func (dropSink) Enqueue(ctx context.Context, userID uint, message string, kind models.NotificationType) error {
	return nil
}

func asUser(userID uint, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("role", string(role))
		c.Next()
	}
}

func setupBookingRouter(t *testing.T) (*gin.Engine, *booking.Controller, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Property{}, &models.Booking{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	directory := &stubDirectory{props: map[uint]booking.PropertyInfo{
		1: {ID: 1, HostID: 100, Title: "Seaside Loft", PricePerNight: 120, IsAvailable: true},
	}}
	ctrl := booking.NewController(db, directory, dropSink{}, zap.NewNop())

	r := gin.New()
	return r, ctrl, db
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func isoDay(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestCreateBookingEndpoint(t *testing.T) {
	r, ctrl, _ := setupBookingRouter(t)
	r.POST("/api/bookings", asUser(10, models.RoleGuest), CreateBooking(ctrl))

	w := postJSON(t, r, "/api/bookings", gin.H{
		"propertyId": 1,
		"checkIn":    isoDay(5),
		"checkOut":   isoDay(8),
	})
	if w.Code != 201 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		BookingID  uint    `json:"bookingId"`
		TotalPrice float64 `json:"totalPrice"`
		Nights     int     `json:"nights"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.BookingID == 0 {
		t.Error("missing booking id")
	}
	if resp.Nights != 3 || resp.TotalPrice != 360 {
		t.Errorf("nights = %d, total = %v; want 3 nights at 120", resp.Nights, resp.TotalPrice)
	}
}

func TestCreateBookingEndpointErrors(t *testing.T) {
	r, ctrl, _ := setupBookingRouter(t)
	r.POST("/api/bookings", asUser(10, models.RoleGuest), CreateBooking(ctrl))

	// Occupy the interval so the conflict case has something to hit.
	if w := postJSON(t, r, "/api/bookings", gin.H{
		"propertyId": 1, "checkIn": isoDay(5), "checkOut": isoDay(10),
	}); w.Code != 201 {
		t.Fatalf("seed booking failed: %d %s", w.Code, w.Body.String())
	}

	cases := []struct {
		name       string
		body       gin.H
		wantStatus int
		wantCode   apperrors.Code
	}{
		{"overlap", gin.H{"propertyId": 1, "checkIn": isoDay(7), "checkOut": isoDay(12)}, 409, apperrors.CodeConflict},
		{"inverted range", gin.H{"propertyId": 1, "checkIn": isoDay(20), "checkOut": isoDay(18)}, 400, apperrors.CodeInvalidRange},
		{"past check-in", gin.H{"propertyId": 1, "checkIn": isoDay(-3), "checkOut": isoDay(2)}, 400, apperrors.CodeValidation},
		{"unknown property", gin.H{"propertyId": 77, "checkIn": isoDay(5), "checkOut": isoDay(8)}, 404, apperrors.CodeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/api/bookings", tc.body)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tc.wantStatus, w.Body.String())
			}
			var resp struct {
				Code apperrors.Code `json:"code"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tc.wantCode)
			}
		})
	}

	// Malformed dates never reach the core.
	w := postJSON(t, r, "/api/bookings", gin.H{"propertyId": 1, "checkIn": "June 5th", "checkOut": isoDay(8)})
	if w.Code != 400 {
		t.Errorf("malformed date: status = %d, want 400", w.Code)
	}
}

func TestBookingDecisionAndCancelEndpoints(t *testing.T) {
	r, ctrl, _ := setupBookingRouter(t)
	r.POST("/api/bookings", asUser(10, models.RoleGuest), CreateBooking(ctrl))
	r.PATCH("/api/bookings/:id/status", asUser(100, models.RoleHost), UpdateBookingStatus(ctrl, nil))
	r.DELETE("/api/bookings/:id", asUser(10, models.RoleGuest), CancelBooking(ctrl, nil))

	w := postJSON(t, r, "/api/bookings", gin.H{
		"propertyId": 1, "checkIn": isoDay(5), "checkOut": isoDay(8),
	})
	if w.Code != 201 {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		BookingID uint `json:"bookingId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	statusPath := fmt.Sprintf("/api/bookings/%d/status", created.BookingID)

	// Binding rejects statuses outside the host's vocabulary.
	req := httptest.NewRequest(http.MethodPatch, statusPath, bytes.NewReader([]byte(`{"status":"completed"}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 400 {
		t.Errorf("completed decision: status = %d, want 400", w.Code)
	}

	req = httptest.NewRequest(http.MethodPatch, statusPath, bytes.NewReader([]byte(`{"status":"confirmed","hostResponse":"see you"}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("confirm: status = %d, body = %s", w.Code, w.Body.String())
	}

	// Guest cancels the confirmed stay before check-in.
	cancelPath := fmt.Sprintf("/api/bookings/%d", created.BookingID)
	req = httptest.NewRequest(http.MethodDelete, cancelPath, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("cancel: status = %d, body = %s", w.Code, w.Body.String())
	}

	// Repeat cancel reports the terminal state.
	req = httptest.NewRequest(http.MethodDelete, cancelPath, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 400 {
		t.Errorf("second cancel: status = %d, want 400", w.Code)
	}
	var resp struct {
		Code apperrors.Code `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != apperrors.CodeAlreadyCancelled {
		t.Errorf("code = %s, want %s", resp.Code, apperrors.CodeAlreadyCancelled)
	}
}

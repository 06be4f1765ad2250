package booking

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stayhub/stayhub-backend/internal/models"
	"github.com/stayhub/stayhub-backend/pkg/apperrors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// One in-memory connection; a second connection would see an empty
	// database of its own.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Booking{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedBooking(t *testing.T, db *gorm.DB, propertyID, guestID uint, checkIn, checkOut time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		PropertyID: propertyID,
		GuestID:    guestID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     status,
		TotalPrice: 100,
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}
	return b
}

func TestFindConflicts(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	// Active stay on property 1 covering Jun 5 to Jun 10.
	seedBooking(t, db, 1, 10, day(2026, 6, 5), day(2026, 6, 10), models.BookingStatusConfirmed)
	// Cancelled stays never count.
	seedBooking(t, db, 1, 11, day(2026, 6, 6), day(2026, 6, 8), models.BookingStatusCancelled)
	// Other properties never count.
	seedBooking(t, db, 2, 12, day(2026, 6, 5), day(2026, 6, 10), models.BookingStatusPending)

	cases := []struct {
		name          string
		checkIn       time.Time
		checkOut      time.Time
		wantConflicts int
	}{
		{"overlapping start", day(2026, 6, 3), day(2026, 6, 6), 1},
		{"overlapping end", day(2026, 6, 9), day(2026, 6, 12), 1},
		{"contained", day(2026, 6, 6), day(2026, 6, 8), 1},
		{"surrounding", day(2026, 6, 1), day(2026, 6, 20), 1},
		{"back to back before", day(2026, 6, 1), day(2026, 6, 5), 0},
		{"back to back after", day(2026, 6, 10), day(2026, 6, 14), 0},
		{"disjoint", day(2026, 7, 1), day(2026, 7, 5), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conflicts, err := ledger.FindConflicts(ctx, 1, tc.checkIn, tc.checkOut)
			if err != nil {
				t.Fatalf("FindConflicts: %v", err)
			}
			if len(conflicts) != tc.wantConflicts {
				t.Errorf("got %d conflicts, want %d", len(conflicts), tc.wantConflicts)
			}
		})
	}
}

func TestFindConflictsCountsPending(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	seedBooking(t, db, 1, 10, day(2026, 6, 5), day(2026, 6, 10), models.BookingStatusPending)

	conflicts, err := ledger.FindConflicts(ctx, 1, day(2026, 6, 7), day(2026, 6, 12))
	if err != nil {
		t.Fatalf("FindConflicts: %v", err)
	}
	if len(conflicts) != 1 {
		t.Errorf("pending bookings must block the interval, got %d conflicts", len(conflicts))
	}
}

func TestComputePrice(t *testing.T) {
	ledger := NewLedger(nil)

	total, nights, err := ledger.ComputePrice(1000, day(2026, 6, 5), day(2026, 6, 8))
	if err != nil {
		t.Fatalf("ComputePrice: %v", err)
	}
	if nights != 3 {
		t.Errorf("nights = %d, want 3", nights)
	}
	if total != 3000 {
		t.Errorf("total = %v, want 3000", total)
	}

	if _, _, err := ledger.ComputePrice(1000, day(2026, 6, 5), day(2026, 6, 5)); !apperrors.Is(err, apperrors.CodeInvalidRange) {
		t.Errorf("zero-night stay: got %v, want invalid range", err)
	}
	if _, _, err := ledger.ComputePrice(1000, day(2026, 6, 5), day(2026, 6, 1)); !apperrors.Is(err, apperrors.CodeInvalidRange) {
		t.Errorf("inverted stay: got %v, want invalid range", err)
	}
}

func TestAppendForcesPending(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	b := &models.Booking{
		PropertyID: 1,
		GuestID:    10,
		CheckIn:    day(2026, 6, 5),
		CheckOut:   day(2026, 6, 10),
		Status:     models.BookingStatusConfirmed,
		TotalPrice: 500,
	}
	if err := ledger.Append(ctx, b); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var stored models.Booking
	if err := db.First(&stored, b.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.BookingStatusPending {
		t.Errorf("stored status = %s, want pending", stored.Status)
	}
}

func TestTransitionCompareAndSwap(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	b := seedBooking(t, db, 1, 10, day(2026, 6, 5), day(2026, 6, 10), models.BookingStatusPending)

	err := ledger.Transition(ctx, b.ID, models.BookingStatusPending, models.BookingStatusConfirmed,
		map[string]interface{}{"host_response": "welcome"})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}

	var stored models.Booking
	if err := db.First(&stored, b.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.BookingStatusConfirmed {
		t.Errorf("status = %s, want confirmed", stored.Status)
	}
	if stored.HostResponse != "welcome" {
		t.Errorf("host response = %q, want %q", stored.HostResponse, "welcome")
	}

	// The row already moved, so the same swap must miss.
	err = ledger.Transition(ctx, b.ID, models.BookingStatusPending, models.BookingStatusConfirmed, nil)
	if !apperrors.Is(err, apperrors.CodeInvalidTransition) {
		t.Errorf("repeated transition: got %v, want invalid transition", err)
	}
}

func TestTransitionRejectsIllegalEdges(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	b := seedBooking(t, db, 1, 10, day(2026, 6, 5), day(2026, 6, 10), models.BookingStatusCancelled)

	for _, to := range []models.BookingStatus{
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
		models.BookingStatusCompleted,
	} {
		err := ledger.Transition(ctx, b.ID, models.BookingStatusCancelled, to, nil)
		if !apperrors.Is(err, apperrors.CodeInvalidTransition) {
			t.Errorf("cancelled -> %s: got %v, want invalid transition", to, err)
		}
	}

	var stored models.Booking
	if err := db.First(&stored, b.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.BookingStatusCancelled {
		t.Errorf("terminal row was mutated, status = %s", stored.Status)
	}
}

func TestListByGuestNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	first := seedBooking(t, db, 1, 10, day(2026, 6, 1), day(2026, 6, 3), models.BookingStatusPending)
	second := seedBooking(t, db, 2, 10, day(2026, 7, 1), day(2026, 7, 3), models.BookingStatusPending)
	// Force distinct creation times; sqlite would otherwise round them together.
	db.Model(first).Update("created_at", time.Now().Add(-time.Hour))
	db.Model(second).Update("created_at", time.Now())
	// Someone else's booking stays out of the listing.
	seedBooking(t, db, 1, 99, day(2026, 8, 1), day(2026, 8, 3), models.BookingStatusPending)

	bookings, err := ledger.ListByGuest(ctx, 10)
	if err != nil {
		t.Fatalf("ListByGuest: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("got %d bookings, want 2", len(bookings))
	}
	if bookings[0].ID != second.ID || bookings[1].ID != first.ID {
		t.Errorf("expected newest first, got ids %d, %d", bookings[0].ID, bookings[1].ID)
	}
}

func TestListByHost(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()

	host := models.User{Username: "host", Email: "host@example.com", PasswordHash: "x", Role: models.RoleHost}
	if err := db.Create(&host).Error; err != nil {
		t.Fatalf("seed host: %v", err)
	}
	mine := models.Property{HostID: host.ID, Title: "Loft", City: "Lisbon", PricePerNight: 90, IsAvailable: true}
	other := models.Property{HostID: host.ID + 1, Title: "Cabin", City: "Porto", PricePerNight: 70, IsAvailable: true}
	if err := db.Create(&mine).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}

	seedBooking(t, db, mine.ID, 10, day(2026, 6, 1), day(2026, 6, 3), models.BookingStatusPending)
	seedBooking(t, db, other.ID, 10, day(2026, 6, 1), day(2026, 6, 3), models.BookingStatusPending)

	bookings, err := ledger.ListByHost(ctx, host.ID)
	if err != nil {
		t.Fatalf("ListByHost: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("got %d bookings, want 1", len(bookings))
	}
	if bookings[0].PropertyID != mine.ID {
		t.Errorf("listed booking belongs to property %d, want %d", bookings[0].PropertyID, mine.ID)
	}
}

func TestGetNotFound(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)

	_, err := ledger.Get(context.Background(), 12345)
	if !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Errorf("got %v, want not found", err)
	}
}

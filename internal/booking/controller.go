package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stayhub/stayhub-backend/internal/models"
	"github.com/stayhub/stayhub-backend/pkg/apperrors"
)

// PropertyInfo is the slice of a property record the booking core needs.
type PropertyInfo struct {
	ID            uint
	HostID        uint
	Title         string
	PricePerNight float64
	IsAvailable   bool
}

// PropertyDirectory resolves property ids to listing facts. Implemented
// by the listing store; the core never writes through it.
type PropertyDirectory interface {
	GetProperty(ctx context.Context, id uint) (PropertyInfo, error)
}

// NotificationSink is the durable mailbox the controller appends
// user-facing messages to. Enqueue failures must not fail a booking
// transition; the controller logs and continues.
type NotificationSink interface {
	Enqueue(ctx context.Context, userID uint, message string, kind models.NotificationType) error
}

const defaultLockWait = 2 * time.Second

// Controller orchestrates the reservation lifecycle on top of the
// ledger: create, host decision, guest cancellation. Each state change
// is validated, applied atomically, and followed by a notification.
type Controller struct {
	db        *gorm.DB
	ledger    *Ledger
	directory PropertyDirectory
	sink      NotificationSink
	locks     *propertyLocks
	log       *zap.Logger
	LockWait  time.Duration
}

func NewController(db *gorm.DB, directory PropertyDirectory, sink NotificationSink, log *zap.Logger) *Controller {
	return &Controller{
		db:        db,
		ledger:    NewLedger(db),
		directory: directory,
		sink:      sink,
		locks:     newPropertyLocks(),
		log:       log,
		LockWait:  defaultLockWait,
	}
}

// Ledger exposes the underlying reservation ledger for read paths.
func (c *Controller) Ledger() *Ledger {
	return c.ledger
}

// CreateResult is returned to the request layer after a successful create.
type CreateResult struct {
	BookingID  uint
	TotalPrice float64
	Nights     int
}

// CreateBooking validates a stay request, reserves the interval, and
// notifies the host. The conflict check and the insert run inside the
// property's exclusive section so two overlapping requests can never
// both observe a free calendar.
func (c *Controller) CreateBooking(ctx context.Context, propertyID, guestID uint, checkIn, checkOut time.Time, message string) (*CreateResult, error) {
	checkIn = dateOnly(checkIn)
	checkOut = dateOnly(checkOut)

	if !checkOut.After(checkIn) {
		return nil, apperrors.New(apperrors.CodeInvalidRange, "check-out date must be after check-in date")
	}
	if checkIn.Before(today()) {
		return nil, apperrors.New(apperrors.CodeValidation, "check-in date cannot be in the past")
	}

	property, err := c.directory.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsAvailable {
		return nil, apperrors.New(apperrors.CodeUnavailable, "property is not available for booking")
	}

	totalPrice, nights, err := c.ledger.ComputePrice(property.PricePerNight, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		PropertyID:   propertyID,
		GuestID:      guestID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		TotalPrice:   totalPrice,
		GuestMessage: message,
	}

	// Critical section: check-then-insert must be atomic per property.
	err = func() error {
		release, err := c.locks.Acquire(ctx, propertyID, c.LockWait)
		if err != nil {
			return err
		}
		defer release()

		conflicts, err := c.ledger.FindConflicts(ctx, propertyID, checkIn, checkOut)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "conflict check failed", err)
		}
		if len(conflicts) > 0 {
			return apperrors.New(apperrors.CodeConflict, "property is not available for the selected dates")
		}
		return c.ledger.Append(ctx, booking)
	}()
	if err != nil {
		return nil, err
	}

	c.notify(ctx, property.HostID,
		fmt.Sprintf("New booking request for %s", property.Title),
		models.NotificationBookingRequest)

	return &CreateResult{
		BookingID:  booking.ID,
		TotalPrice: totalPrice,
		Nights:     nights,
	}, nil
}

// DecideBooking applies the host's accept/reject decision to a pending
// reservation. Only the owning host or an administrator may decide, and
// only from the pending state, exactly once.
func (c *Controller) DecideBooking(ctx context.Context, bookingID, actorID uint, actorRole models.Role, decision models.BookingStatus, response string) error {
	if decision != models.BookingStatusConfirmed && decision != models.BookingStatusCancelled {
		return apperrors.New(apperrors.CodeValidation, "decision must be confirmed or cancelled")
	}

	booking, err := c.ledger.Get(ctx, bookingID)
	if err != nil {
		return err
	}

	// The directory is the single source of property facts; the row's
	// preloaded association is for read surfaces only.
	property, err := c.directory.GetProperty(ctx, booking.PropertyID)
	if err != nil {
		return err
	}
	if property.HostID != actorID && actorRole != models.RoleAdmin {
		return apperrors.New(apperrors.CodeUnauthorized, "only the property host can decide this booking")
	}
	if booking.Status != models.BookingStatusPending {
		return apperrors.New(apperrors.CodeInvalidTransition, "booking has already been decided")
	}

	extra := map[string]interface{}{"host_response": response}

	if decision == models.BookingStatusCancelled {
		// Rejection frees the interval, so it takes the same property
		// section a concurrent create uses for its conflict decision.
		release, err := c.locks.Acquire(ctx, booking.PropertyID, c.LockWait)
		if err != nil {
			return err
		}
		err = c.ledger.Transition(ctx, bookingID, models.BookingStatusPending, decision, extra)
		release()
		if err != nil {
			return err
		}
	} else {
		if err := c.ledger.Transition(ctx, bookingID, models.BookingStatusPending, decision, extra); err != nil {
			return err
		}
	}

	c.notify(ctx, booking.GuestID,
		fmt.Sprintf("Your booking has been %s", decision),
		models.NotificationBookingUpdate)
	return nil
}

// CancelBooking lets the owning guest cancel a reservation before
// check-in. The freed interval immediately stops counting toward
// conflict checks.
func (c *Controller) CancelBooking(ctx context.Context, bookingID, actorID uint) error {
	booking, err := c.ledger.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	// Non-owners learn nothing beyond "not found".
	if booking.GuestID != actorID {
		return apperrors.New(apperrors.CodeNotFound, "booking not found")
	}

	if booking.Status == models.BookingStatusCancelled {
		return apperrors.New(apperrors.CodeAlreadyCancelled, "booking is already cancelled")
	}
	if !dateOnly(booking.CheckIn).After(today()) {
		return apperrors.New(apperrors.CodePastCheckIn, "cannot cancel booking after check-in date")
	}

	// Freeing the interval must not race a concurrent create reading
	// the calendar, so the cancel CAS runs inside the property section.
	// The host may have decided while we were outside it, so the swap
	// starts from the status the row holds now, not the one read above.
	err = func() error {
		release, err := c.locks.Acquire(ctx, booking.PropertyID, c.LockWait)
		if err != nil {
			return err
		}
		defer release()

		current, err := c.ledger.Get(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.Status == models.BookingStatusCancelled {
			return apperrors.New(apperrors.CodeAlreadyCancelled, "booking is already cancelled")
		}
		return c.ledger.Transition(ctx, bookingID, current.Status, models.BookingStatusCancelled, nil)
	}()
	if err != nil {
		return err
	}

	if property, perr := c.directory.GetProperty(ctx, booking.PropertyID); perr == nil {
		c.notify(ctx, property.HostID,
			fmt.Sprintf("Booking for %s has been cancelled", property.Title),
			models.NotificationBookingCancelled)
	}
	return nil
}

// notify appends to the notification sink without ever failing the
// surrounding transition.
func (c *Controller) notify(ctx context.Context, userID uint, message string, kind models.NotificationType) {
	if c.sink == nil {
		return
	}
	if err := c.sink.Enqueue(ctx, userID, message, kind); err != nil {
		c.log.Warn("notification enqueue failed",
			zap.Uint("userId", userID),
			zap.String("type", string(kind)),
			zap.Error(err))
	}
}

// dateOnly strips the time-of-day component; stays are calendar-dated.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func today() time.Time {
	return dateOnly(time.Now().UTC())
}

package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stayhub/stayhub-backend/pkg/apperrors"
)

// propertyLocks serializes the conflict-check-then-write section per
// property. Requests against different properties never block each other;
// requests against the same property queue on its slot. A caller that
// cannot enter the section within the wait bound gets a contention error
// instead of hanging.
type propertyLocks struct {
	mu    sync.Mutex
	slots map[uint]chan struct{}
}

func newPropertyLocks() *propertyLocks {
	return &propertyLocks{slots: make(map[uint]chan struct{})}
}

func (l *propertyLocks) slot(propertyID uint) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[propertyID]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[propertyID] = s
	}
	return s
}

// Acquire enters the property's exclusive section, waiting at most wait.
// The returned release function must be called exactly once.
func (l *propertyLocks) Acquire(ctx context.Context, propertyID uint, wait time.Duration) (func(), error) {
	s := l.slot(propertyID)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case s <- struct{}{}:
		return func() { <-s }, nil
	case <-timer.C:
		return nil, apperrors.New(apperrors.CodeContention,
			fmt.Sprintf("property %d is busy, retry shortly", propertyID))
	case <-ctx.Done():
		return nil, apperrors.Wrap(apperrors.CodeContention, "request cancelled while waiting for property", ctx.Err())
	}
}

package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stayhub/stayhub-backend/internal/models"
	"github.com/stayhub/stayhub-backend/pkg/logger"
	"github.com/stayhub/stayhub-backend/pkg/utils"
)

// NotificationStore is the durable notification mailbox. Every enqueue
// writes a row; connected websocket clients additionally get a live
// push, which is best effort and never fails the enqueue.
type NotificationStore struct {
	db  *gorm.DB
	hub *Hub
}

func NewNotificationStore(db *gorm.DB, hub *Hub) *NotificationStore {
	return &NotificationStore{db: db, hub: hub}
}

func (s *NotificationStore) Enqueue(ctx context.Context, userID uint, message string, kind models.NotificationType) error {
	notification := models.Notification{
		UserID:  userID,
		Message: message,
		Type:    kind,
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.SendNotification(userID, &notification)
	}
	if RedisClient != nil {
		if err := PublishNotification(ctx, &notification); err != nil {
			logger.Get().Warn("failed to publish notification",
				zap.Uint("userId", userID), zap.Error(err))
		}
	}

	go s.sendEmail(userID, message, kind)
	return nil
}

// sendEmail mirrors the notification to the recipient's inbox. Delivery
// is best effort; SMTP problems never surface to the booking flow.
func (s *NotificationStore) sendEmail(userID uint, message string, kind models.NotificationType) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil || user.Email == "" {
		return
	}

	var err error
	switch kind {
	case models.NotificationBookingRequest:
		err = utils.SendBookingRequestEmailToHost(user.Email, message)
	case models.NotificationBookingUpdate:
		err = utils.SendBookingDecisionEmail(user.Email, message)
	case models.NotificationBookingCancelled:
		err = utils.SendBookingCancelledEmailToHost(user.Email, message)
	}
	if err != nil {
		logger.Get().Debug("notification email not sent",
			zap.Uint("userId", userID), zap.Error(err))
	}
}

// PublishNotification fans a stored notification out on Redis pub/sub
// for any other instances holding the user's websocket.
func PublishNotification(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return RedisClient.Publish(ctx, "notifications:new", data).Err()
}

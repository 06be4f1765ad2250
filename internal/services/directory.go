package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/stayhub/stayhub-backend/internal/booking"
	"github.com/stayhub/stayhub-backend/internal/models"
	"github.com/stayhub/stayhub-backend/pkg/apperrors"
)

// PropertyDirectory resolves property lookups for the booking core,
// reading through the Redis cache when one is configured.
type PropertyDirectory struct {
	db *gorm.DB
}

func NewPropertyDirectory(db *gorm.DB) *PropertyDirectory {
	return &PropertyDirectory{db: db}
}

func (d *PropertyDirectory) GetProperty(ctx context.Context, id uint) (booking.PropertyInfo, error) {
	if RedisClient != nil {
		if cached, err := GetCachedProperty(ctx, id); err == nil {
			return propertyInfo(cached), nil
		}
	}

	var property models.Property
	if err := d.db.WithContext(ctx).First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return booking.PropertyInfo{}, apperrors.New(apperrors.CodeNotFound, "property not found")
		}
		return booking.PropertyInfo{}, apperrors.Wrap(apperrors.CodeInternal, "failed to load property", err)
	}

	if RedisClient != nil {
		// Cache fill is best effort
		_ = CacheProperty(ctx, &property)
	}
	return propertyInfo(&property), nil
}

func propertyInfo(p *models.Property) booking.PropertyInfo {
	return booking.PropertyInfo{
		ID:            p.ID,
		HostID:        p.HostID,
		Title:         p.Title,
		PricePerNight: p.PricePerNight,
		IsAvailable:   p.IsAvailable,
	}
}

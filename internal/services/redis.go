package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stayhub/stayhub-backend/internal/models"
)

var RedisClient *redis.Client

const (
	propertyCacheTTL = 5 * time.Minute
	featuredCacheKey = "properties:featured"
)

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// CacheProperty stores a property record in Redis
func CacheProperty(ctx context.Context, property *models.Property) error {
	data, err := json.Marshal(property)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("property:%d", property.ID)
	return RedisClient.Set(ctx, key, data, propertyCacheTTL).Err()
}

// GetCachedProperty retrieves a property record from Redis
func GetCachedProperty(ctx context.Context, propertyID uint) (*models.Property, error) {
	key := fmt.Sprintf("property:%d", propertyID)
	data, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var property models.Property
	if err := json.Unmarshal([]byte(data), &property); err != nil {
		return nil, err
	}
	return &property, nil
}

// InvalidateProperty drops a property's cache entries after a write
func InvalidateProperty(ctx context.Context, propertyID uint) error {
	key := fmt.Sprintf("property:%d", propertyID)
	return RedisClient.Del(ctx, key, featuredCacheKey).Err()
}

// CacheFeaturedProperties stores the featured listing snapshot
func CacheFeaturedProperties(ctx context.Context, properties []models.Property) error {
	data, err := json.Marshal(properties)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, featuredCacheKey, data, propertyCacheTTL).Err()
}

// GetCachedFeaturedProperties retrieves the featured listing snapshot
func GetCachedFeaturedProperties(ctx context.Context) ([]models.Property, error) {
	data, err := RedisClient.Get(ctx, featuredCacheKey).Result()
	if err != nil {
		return nil, err
	}

	var properties []models.Property
	if err := json.Unmarshal([]byte(data), &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// PublishBookingUpdate publishes a booking status change to Redis pub/sub
func PublishBookingUpdate(ctx context.Context, bookingID uint, status models.BookingStatus, data map[string]interface{}) error {
	updateData := map[string]interface{}{
		"bookingId": bookingID,
		"status":    status,
		"data":      data,
		"timestamp": time.Now().Unix(),
	}

	jsonData, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "booking:updates", jsonData).Err()
}

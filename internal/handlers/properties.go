package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stayhub/stayhub-backend/internal/models"
	"github.com/stayhub/stayhub-backend/internal/services"
)

type PropertyInput struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Address       string   `json:"address" binding:"required"`
	City          string   `json:"city" binding:"required"`
	State         string   `json:"state"`
	Country       string   `json:"country"`
	PricePerNight float64  `json:"pricePerNight" binding:"required,gt=0"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	MaxGuests     int      `json:"maxGuests"`
	PropertyType  string   `json:"propertyType"`
	Amenities     []string `json:"amenities"`
	HouseRules    string   `json:"houseRules"`
	Images        []string `json:"images"`
}

// propertyResponse decodes the JSON-encoded array columns for clients
func propertyResponse(p *models.Property) gin.H {
	var images, amenities []string
	if p.Images != "" {
		json.Unmarshal([]byte(p.Images), &images)
	}
	if p.Amenities != "" {
		json.Unmarshal([]byte(p.Amenities), &amenities)
	}
	if images == nil {
		images = []string{}
	}
	if amenities == nil {
		amenities = []string{}
	}

	return gin.H{
		"id":            p.ID,
		"hostId":        p.HostID,
		"title":         p.Title,
		"description":   p.Description,
		"address":       p.Address,
		"city":          p.City,
		"state":         p.State,
		"country":       p.Country,
		"pricePerNight": p.PricePerNight,
		"bedrooms":      p.Bedrooms,
		"bathrooms":     p.Bathrooms,
		"maxGuests":     p.MaxGuests,
		"propertyType":  p.PropertyType,
		"amenities":     amenities,
		"houseRules":    p.HouseRules,
		"images":        images,
		"isAvailable":   p.IsAvailable,
		"createdAt":     p.CreatedAt,
	}
}

func propertyListResponse(properties []models.Property) []gin.H {
	out := make([]gin.H, 0, len(properties))
	for i := range properties {
		out = append(out, propertyResponse(&properties[i]))
	}
	return out
}

// GetProperties returns available listings matching the search filters
func GetProperties(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Where("is_available = ?", true)

		if city := c.Query("city"); city != "" {
			query = query.Where("city LIKE ?", "%"+city+"%")
		}
		if minPrice := c.Query("minPrice"); minPrice != "" {
			query = query.Where("price_per_night >= ?", minPrice)
		}
		if maxPrice := c.Query("maxPrice"); maxPrice != "" {
			query = query.Where("price_per_night <= ?", maxPrice)
		}
		if propertyType := c.Query("propertyType"); propertyType != "" {
			query = query.Where("property_type = ?", propertyType)
		}
		if bedrooms := c.Query("bedrooms"); bedrooms != "" {
			query = query.Where("bedrooms >= ?", bedrooms)
		}
		if guests := c.Query("guests"); guests != "" {
			query = query.Where("max_guests >= ?", guests)
		}

		var properties []models.Property
		if err := query.Order("created_at DESC").Find(&properties).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch properties"})
			return
		}

		c.JSON(200, propertyListResponse(properties))
	}
}

// GetFeaturedProperties returns the newest available listings for the
// homepage, served from the Redis cache when warm
func GetFeaturedProperties(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		if services.RedisClient != nil {
			if cached, err := services.GetCachedFeaturedProperties(ctx); err == nil {
				c.JSON(200, propertyListResponse(cached))
				return
			}
		}

		var properties []models.Property
		if err := db.Where("is_available = ?", true).
			Order("created_at DESC").
			Limit(6).
			Find(&properties).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch properties"})
			return
		}

		if services.RedisClient != nil {
			services.CacheFeaturedProperties(ctx, properties)
		}

		c.JSON(200, propertyListResponse(properties))
	}
}

// GetProperty returns a single listing with its reviews and average rating
func GetProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var property models.Property
		if err := db.Preload("Host").First(&property, id).Error; err != nil {
			c.JSON(404, gin.H{"error": "Property not found"})
			return
		}

		var reviews []models.Review
		db.Preload("Guest").Where("property_id = ?", property.ID).
			Order("created_at DESC").Find(&reviews)

		avgRating := 0.0
		for _, r := range reviews {
			avgRating += float64(r.Rating)
		}
		if len(reviews) > 0 {
			avgRating /= float64(len(reviews))
		}

		response := propertyResponse(&property)
		response["hostName"] = property.Host.FullName
		response["reviews"] = reviews
		response["avgRating"] = avgRating

		c.JSON(200, response)
	}
}

// CreateProperty creates a listing owned by the calling host
func CreateProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostId := c.GetUint("userId")

		var input PropertyInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		amenities, _ := json.Marshal(input.Amenities)
		images, _ := json.Marshal(input.Images)

		property := models.Property{
			HostID:        hostId,
			Title:         input.Title,
			Description:   input.Description,
			Address:       input.Address,
			City:          input.City,
			State:         input.State,
			Country:       input.Country,
			PricePerNight: input.PricePerNight,
			Bedrooms:      input.Bedrooms,
			Bathrooms:     input.Bathrooms,
			MaxGuests:     input.MaxGuests,
			PropertyType:  input.PropertyType,
			Amenities:     string(amenities),
			HouseRules:    input.HouseRules,
			Images:        string(images),
			IsAvailable:   true,
		}
		if property.Bedrooms == 0 {
			property.Bedrooms = 1
		}
		if property.Bathrooms == 0 {
			property.Bathrooms = 1
		}
		if property.MaxGuests == 0 {
			property.MaxGuests = 2
		}

		if err := db.Create(&property).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create property"})
			return
		}

		c.JSON(201, gin.H{"message": "Property created successfully", "id": property.ID})
	}
}

// requireOwnership loads the property and verifies the caller owns it or
// is an admin
func requireOwnership(db *gorm.DB, c *gin.Context, id string) (*models.Property, bool) {
	var property models.Property
	if err := db.First(&property, id).Error; err != nil {
		c.JSON(404, gin.H{"error": "Property not found"})
		return nil, false
	}

	userId := c.GetUint("userId")
	role := models.Role(c.GetString("role"))
	if property.HostID != userId && role != models.RoleAdmin {
		c.JSON(403, gin.H{"error": "Not authorized"})
		return nil, false
	}
	return &property, true
}

// UpdateProperty updates a listing's fields, ownership checked
func UpdateProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		property, ok := requireOwnership(db, c, id)
		if !ok {
			return
		}

		var input struct {
			Title         *string   `json:"title"`
			Description   *string   `json:"description"`
			Address       *string   `json:"address"`
			City          *string   `json:"city"`
			State         *string   `json:"state"`
			Country       *string   `json:"country"`
			PricePerNight *float64  `json:"pricePerNight"`
			Bedrooms      *int      `json:"bedrooms"`
			Bathrooms     *int      `json:"bathrooms"`
			MaxGuests     *int      `json:"maxGuests"`
			PropertyType  *string   `json:"propertyType"`
			Amenities     *[]string `json:"amenities"`
			HouseRules    *string   `json:"houseRules"`
			Images        *[]string `json:"images"`
			IsAvailable   *bool     `json:"isAvailable"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Title != nil {
			property.Title = *input.Title
		}
		if input.Description != nil {
			property.Description = *input.Description
		}
		if input.Address != nil {
			property.Address = *input.Address
		}
		if input.City != nil {
			property.City = *input.City
		}
		if input.State != nil {
			property.State = *input.State
		}
		if input.Country != nil {
			property.Country = *input.Country
		}
		if input.PricePerNight != nil {
			property.PricePerNight = *input.PricePerNight
		}
		if input.Bedrooms != nil {
			property.Bedrooms = *input.Bedrooms
		}
		if input.Bathrooms != nil {
			property.Bathrooms = *input.Bathrooms
		}
		if input.MaxGuests != nil {
			property.MaxGuests = *input.MaxGuests
		}
		if input.PropertyType != nil {
			property.PropertyType = *input.PropertyType
		}
		if input.Amenities != nil {
			amenities, _ := json.Marshal(*input.Amenities)
			property.Amenities = string(amenities)
		}
		if input.HouseRules != nil {
			property.HouseRules = *input.HouseRules
		}
		if input.Images != nil {
			images, _ := json.Marshal(*input.Images)
			property.Images = string(images)
		}
		if input.IsAvailable != nil {
			property.IsAvailable = *input.IsAvailable
		}

		if err := db.Save(property).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update property"})
			return
		}

		// The booking core reads properties through the cache
		if services.RedisClient != nil {
			services.InvalidateProperty(context.Background(), property.ID)
		}

		c.JSON(200, gin.H{"message": "Property updated successfully"})
	}
}

// DeleteProperty removes a listing, ownership checked
func DeleteProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		property, ok := requireOwnership(db, c, id)
		if !ok {
			return
		}

		if err := db.Delete(property).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete property"})
			return
		}

		if services.RedisClient != nil {
			services.InvalidateProperty(context.Background(), property.ID)
		}

		c.JSON(200, gin.H{"message": "Property deleted successfully"})
	}
}

// GetMyProperties returns the calling host's listings
func GetMyProperties(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostId := c.GetUint("userId")

		var properties []models.Property
		if err := db.Where("host_id = ?", hostId).
			Order("created_at DESC").
			Find(&properties).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch properties"})
			return
		}

		c.JSON(200, propertyListResponse(properties))
	}
}

// UploadPropertyImages stores uploaded images and appends their URLs to
// the listing
func UploadPropertyImages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		property, ok := requireOwnership(db, c, id)
		if !ok {
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid multipart form"})
			return
		}

		files := form.File["images"]
		if len(files) == 0 {
			c.JSON(400, gin.H{"error": "No images provided"})
			return
		}

		var images []string
		if property.Images != "" {
			json.Unmarshal([]byte(property.Images), &images)
		}

		uploaded := make([]string, 0, len(files))
		for _, file := range files {
			path, err := services.UploadImage(file, "properties")
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to upload image: " + err.Error()})
				return
			}
			url := services.GetImageURL(path)
			images = append(images, url)
			uploaded = append(uploaded, url)
		}

		encoded, _ := json.Marshal(images)
		if err := db.Model(property).Update("images", string(encoded)).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save image URLs"})
			return
		}

		if services.RedisClient != nil {
			services.InvalidateProperty(context.Background(), property.ID)
		}

		c.JSON(200, gin.H{"message": "Images uploaded successfully", "images": uploaded})
	}
}

// parseUintParam converts a path parameter to an id
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(value), true
}

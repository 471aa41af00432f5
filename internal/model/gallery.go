package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gallery item statuses.
const (
	GalleryStatusActive   = "active"
	GalleryStatusInactive = "inactive"
)

// GalleryItem is a portfolio entry shown on the public site.
type GalleryItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Featured    bool               `bson:"featured,omitempty" json:"featured,omitempty"`
	Views       int64              `bson:"views" json:"views"`
	Likes       int64              `bson:"likes" json:"likes"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// GalleryStats aggregates counters across the whole collection plus a
// per-category breakdown.
type GalleryStats struct {
	Overall    GalleryOverall   `json:"overall"`
	Categories map[string]int64 `json:"categories"`
}

type GalleryOverall struct {
	TotalItems int64   `bson:"totalItems" json:"totalItems"`
	TotalViews int64   `bson:"totalViews" json:"totalViews"`
	TotalLikes int64   `bson:"totalLikes" json:"totalLikes"`
	AvgViews   float64 `bson:"avgViews" json:"avgViews"`
	AvgLikes   float64 `bson:"avgLikes" json:"avgLikes"`
}

package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/query"
)

func (s *Store) gallery() *mongo.Collection {
	return s.db.Collection(collGallery)
}

// CreateGalleryItem inserts a new portfolio entry. Counters start at zero
// and status defaults to active.
func (s *Store) CreateGalleryItem(ctx context.Context, item *model.GalleryItem) error {
	now := time.Now().UTC()
	item.ID = primitive.NewObjectID()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Views = 0
	item.Likes = 0
	if item.Status == "" {
		item.Status = model.GalleryStatusActive
	}

	_, err := s.gallery().InsertOne(ctx, item)
	return err
}

// GetGalleryItem fetches an entry by hex ObjectID.
func (s *Store) GetGalleryItem(ctx context.Context, id string) (*model.GalleryItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var item model.GalleryItem
	if err := s.gallery().FindOne(ctx, bson.M{"_id": oid}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListGallery pages through entries under the shared list-query contract.
func (s *Store) ListGallery(ctx context.Context, p query.Params) (*query.Result[model.GalleryItem], error) {
	return query.Find[model.GalleryItem](ctx, s.gallery(), p)
}

// FeaturedGallery returns up to limit featured active entries, newest first.
func (s *Store) FeaturedGallery(ctx context.Context, limit int64) ([]model.GalleryItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.gallery().Find(ctx, bson.M{
		"status":   model.GalleryStatusActive,
		"featured": true,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []model.GalleryItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateGalleryItem applies a patch and refreshes updatedAt.
func (s *Store) UpdateGalleryItem(ctx context.Context, id string, patch bson.M) (*model.GalleryItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range patch {
		if k == "_id" {
			continue
		}
		set[k] = v
	}

	res, err := s.gallery().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.GetGalleryItem(ctx, id)
}

// DeleteGalleryItem removes an entry; unknown ids report ErrNotFound.
func (s *Store) DeleteGalleryItem(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.gallery().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementGalleryViews bumps the view counter by one.
func (s *Store) IncrementGalleryViews(ctx context.Context, id string) error {
	return s.incGalleryCounter(ctx, id, "views", 1)
}

// ToggleGalleryLike adjusts the like counter by +1 or -1.
func (s *Store) ToggleGalleryLike(ctx context.Context, id string, increment bool) error {
	delta := int64(1)
	if !increment {
		delta = -1
	}
	return s.incGalleryCounter(ctx, id, "likes", delta)
}

func (s *Store) incGalleryCounter(ctx context.Context, id, field string, delta int64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.gallery().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$inc": bson.M{field: delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GalleryCategories returns the distinct non-empty categories among active
// entries, for the public category filter.
func (s *Store) GalleryCategories(ctx context.Context) ([]string, error) {
	vals, err := s.gallery().Distinct(ctx, "category", bson.M{"status": model.GalleryStatusActive})
	if err != nil {
		return nil, err
	}

	categories := []string{}
	for _, v := range vals {
		if c, ok := v.(string); ok && c != "" {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

// GalleryStats aggregates overall counters and per-category counts.
func (s *Store) GalleryStats(ctx context.Context) (*model.GalleryStats, error) {
	overallCursor, err := s.gallery().Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalItems": bson.M{"$sum": 1},
			"totalViews": bson.M{"$sum": "$views"},
			"totalLikes": bson.M{"$sum": "$likes"},
			"avgViews":   bson.M{"$avg": "$views"},
			"avgLikes":   bson.M{"$avg": "$likes"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer overallCursor.Close(ctx)

	var overall []model.GalleryOverall
	if err := overallCursor.All(ctx, &overall); err != nil {
		return nil, err
	}

	stats := &model.GalleryStats{Categories: map[string]int64{}}
	if len(overall) > 0 {
		stats.Overall = overall[0]
	}

	catCursor, err := s.gallery().Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer catCursor.Close(ctx)

	var cats []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := catCursor.All(ctx, &cats); err != nil {
		return nil, err
	}
	for _, c := range cats {
		stats.Categories[c.Category] = c.Count
	}

	return stats, nil
}

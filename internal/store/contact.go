package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/query"
)

func (s *Store) contacts() *mongo.Collection {
	return s.db.Collection(collContacts)
}

// CreateContact stores a message from the public contact form. New messages
// always start unread.
func (s *Store) CreateContact(ctx context.Context, c *model.Contact) error {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Message = strings.TrimSpace(c.Message)
	c.Status = model.ContactStatusUnread
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.contacts().InsertOne(ctx, c)
	return err
}

// GetContact fetches a message by hex ObjectID.
func (s *Store) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var c model.Contact
	if err := s.contacts().FindOne(ctx, bson.M{"_id": oid}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListContacts pages through messages under the shared list-query contract.
func (s *Store) ListContacts(ctx context.Context, p query.Params) (*query.Result[model.Contact], error) {
	return query.Find[model.Contact](ctx, s.contacts(), p)
}

// UpdateContactStatus moves a message through its workflow
// (unread/read/replied/archived).
func (s *Store) UpdateContactStatus(ctx context.Context, id, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.contacts().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteContact removes a message; unknown ids report ErrNotFound.
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.contacts().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadContactCount returns the number of unread messages, for the admin
// dashboard badge.
func (s *Store) UnreadContactCount(ctx context.Context) (int64, error) {
	return s.contacts().CountDocuments(ctx, bson.M{"status": model.ContactStatusUnread})
}

// ContactStats counts messages per workflow status.
func (s *Store) ContactStats(ctx context.Context) (*model.ContactStats, error) {
	cursor, err := s.contacts().Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &model.ContactStats{}
	for _, r := range rows {
		stats.Total += r.Count
		switch r.Status {
		case model.ContactStatusUnread:
			stats.Unread = r.Count
		case model.ContactStatusRead:
			stats.Read = r.Count
		case model.ContactStatusReplied:
			stats.Replied = r.Count
		case model.ContactStatusArchived:
			stats.Archived = r.Count
		}
	}
	return stats, nil
}

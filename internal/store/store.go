// Package store provides MongoDB-backed persistence for all site
// collections: users, gallery, contacts, jobs, job applications, and admin
// accounts.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	collUsers        = "users"
	collGallery      = "gallery"
	collContacts     = "contacts"
	collJobs         = "jobs"
	collApplications = "job_applications"
	collAdmins       = "admin_users"
)

// Config describes how to reach the database. URI is required; FallbackURIs
// are tried in order when the primary is unreachable.
type Config struct {
	URI          string
	FallbackURIs []string
	Database     string

	// ConnectTimeout bounds server selection per attempt. Defaults to 5s.
	ConnectTimeout time.Duration
	// MaxAttempts bounds the total number of connection attempts across
	// all URIs. Defaults to 3.
	MaxAttempts int
}

// Store owns the MongoDB client and database handle. It is constructed once
// at startup and passed down explicitly; there is no package-level
// connection state.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// Connect dials MongoDB with bounded retry and backoff over the configured
// URI list, pings the server, and returns a ready Store. It does not create
// indexes; call EnsureIndexes after connecting.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = "powershield"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	uris := append([]string{cfg.URI}, cfg.FallbackURIs...)

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("mongodb connection retry", "attempt", attempt+1, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		uri := uris[attempt%len(uris)]
		client, err := dial(ctx, uri, cfg.ConnectTimeout)
		if err != nil {
			lastErr = err
			logger.Warn("mongodb connection failed", "error", err)
			continue
		}

		logger.Info("connected to mongodb", "database", cfg.Database)
		return &Store{
			client: client,
			db:     client.Database(cfg.Database),
			logger: logger,
		}, nil
	}

	return nil, fmt.Errorf("connect mongodb after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

func dial(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout+2*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(dialCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping verifies the connection is still healthy.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// EnsureIndexes creates the unique and text indexes every collection relies
// on. Uniqueness enforcement for users and admin accounts lives here, not in
// application-level pre-checks.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)

	type indexSet struct {
		coll   string
		models []mongo.IndexModel
	}

	sets := []indexSet{
		{collUsers, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "email", Value: "text"}}},
		}},
		{collGallery, []mongo.IndexModel{
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
		}},
		{collContacts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "email", Value: "text"}, {Key: "message", Value: "text"}}},
		}},
		{collJobs, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
		}},
		{collApplications, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "jobId", Value: 1}}},
			{Keys: bson.D{{Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "firstName", Value: "text"}, {Key: "lastName", Value: "text"}, {Key: "email", Value: "text"}, {Key: "position", Value: "text"}}},
		}},
		{collAdmins, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}}},
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
		}},
	}

	for _, set := range sets {
		if _, err := s.db.Collection(set.coll).Indexes().CreateMany(ctx, set.models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", set.coll, err)
		}
	}

	s.logger.Info("database indexes ensured")
	return nil
}

// newID generates a short prefixed identifier like "job_1a2b3c4d", matching
// the existing documents in the database.
func newID(prefix string) string {
	return prefix + "_" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// translateWriteErr maps driver errors to the store's sentinel errors.
func translateWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

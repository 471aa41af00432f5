package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/powershield/shield/internal/model"
)

// adminProjection strips the password hash from read and list results. Only
// the login lookup (FindAdminByUsernameOrEmail) sees the hash.
var adminProjection = bson.M{"hashedPassword": 0}

func (s *Store) admins() *mongo.Collection {
	return s.db.Collection(collAdmins)
}

// CreateAdmin persists a new admin account. The caller supplies the bcrypt
// hash; this method never sees a plaintext password. A username or email
// collision surfaces as ErrDuplicate from the unique index.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.AdminUser) error {
	now := time.Now().UTC()
	if admin.ID == "" {
		admin.ID = newID("admin")
	}
	if admin.Role == "" {
		admin.Role = model.RoleAdmin
	}
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if _, err := s.admins().InsertOne(ctx, admin); err != nil {
		return translateWriteErr(err)
	}

	s.logger.Info("admin account created", "id", admin.ID, "username", admin.Username)
	return nil
}

// GetAdminByID fetches an account by its id, without the password hash.
func (s *Store) GetAdminByID(ctx context.Context, id string) (*model.AdminUser, error) {
	var admin model.AdminUser
	err := s.admins().
		FindOne(ctx, bson.M{"id": id}, options.FindOne().SetProjection(adminProjection)).
		Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// FindAdminByUsernameOrEmail fetches an account by either login handle,
// including the password hash. Reserved for the login flow; everything
// outward-facing goes through GetAdminByID or ListAdmins.
func (s *Store) FindAdminByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*model.AdminUser, error) {
	var admin model.AdminUser
	err := s.admins().FindOne(ctx, bson.M{
		"$or": bson.A{
			bson.M{"username": usernameOrEmail},
			bson.M{"email": usernameOrEmail},
		},
	}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// ListAdmins returns accounts matching the filter, newest first, hashes
// stripped.
func (s *Store) ListAdmins(ctx context.Context, filter bson.M) ([]model.AdminUser, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(adminProjection)

	cursor, err := s.admins().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	admins := []model.AdminUser{}
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// UpdateAdmin applies a patch to an account. If the patch carries a
// "hashedPassword" key the caller has already hashed the new password.
// updatedAt is always refreshed. Username/email collisions surface as
// ErrDuplicate.
func (s *Store) UpdateAdmin(ctx context.Context, id string, patch bson.M) (*model.AdminUser, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range patch {
		set[k] = v
	}

	res, err := s.admins().UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, translateWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.GetAdminByID(ctx, id)
}

// UpdateAdminStatus flips the active flag. Deactivation takes effect on the
// next gated request because the authentication gate re-reads the account.
func (s *Store) UpdateAdminStatus(ctx context.Context, id string, active bool) (*model.AdminUser, error) {
	return s.UpdateAdmin(ctx, id, bson.M{"isActive": active})
}

// UpdateAdminLastLogin stamps lastLoginAt. Called only from the login flow.
func (s *Store) UpdateAdminLastLogin(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := s.admins().UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"lastLoginAt": now, "updatedAt": now},
	})
	return err
}

// DeleteAdmin removes an account permanently. Deleting an unknown id is
// reported as ErrNotFound, never a silent success.
func (s *Store) DeleteAdmin(ctx context.Context, id string) error {
	res, err := s.admins().DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	s.logger.Info("admin account deleted", "id", id)
	return nil
}

// CountAdmins reports how many accounts exist, used at startup to warn when
// the bootstrap account is missing.
func (s *Store) CountAdmins(ctx context.Context) (int64, error) {
	return s.admins().CountDocuments(ctx, bson.M{})
}

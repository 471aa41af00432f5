// Package service implements the admin authentication core: password
// hashing, token issuance and verification, and the login flow.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/store"
)

// TokenTTL is the fixed validity window for issued tokens. Not configurable
// per call.
const TokenTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials covers every login failure: unknown username,
	// wrong password, and deactivated account. Callers must not be able to
	// tell which one occurred.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers every token failure: malformed, bad signature,
	// expired, unknown identity, deactivated identity. One error shape so
	// the token internals cannot be probed.
	ErrInvalidToken = errors.New("invalid token")
)

// HashPassword produces a salted bcrypt hash of a plaintext password.
// Callers validate non-emptiness before reaching this.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Claims is the signed identity claim set carried by a bearer token.
type Claims struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// AdminReader is the slice of the credential store the auth service needs.
type AdminReader interface {
	GetAdminByID(ctx context.Context, id string) (*model.AdminUser, error)
	FindAdminByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*model.AdminUser, error)
	UpdateAdminLastLogin(ctx context.Context, id string) error
}

// Auth issues and verifies bearer tokens and runs the login flow. The
// signing secret is established at startup and never mutated.
type Auth struct {
	admins AdminReader
	secret []byte
}

// NewAuth creates the auth service.
func NewAuth(admins AdminReader, secret string) *Auth {
	return &Auth{
		admins: admins,
		secret: []byte(secret),
	}
}

// IssueToken signs a token for the account with the fixed 24h expiry.
func (a *Auth) IssueToken(admin *model.AdminUser) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:       admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			Issuer:    "shield",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// VerifyToken checks the signature and expiry. Every failure mode returns
// ErrInvalidToken.
func (a *Auth) VerifyToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Authenticate verifies a bearer token and re-reads the account it names,
// rejecting tokens whose identity has since been removed or deactivated.
// The returned claims reflect the stored account, not the token payload, so
// a role change propagates as immediately as a deactivation.
func (a *Auth) Authenticate(ctx context.Context, tokenStr string) (*model.AdminUser, *Claims, error) {
	claims, err := a.VerifyToken(tokenStr)
	if err != nil {
		return nil, nil, err
	}

	admin, err := a.admins.GetAdminByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	if !admin.IsActive {
		return nil, nil, ErrInvalidToken
	}

	claims.Username = admin.Username
	claims.Role = admin.Role
	return admin, claims, nil
}

// Login authenticates a username (or email) and password, stamps the login
// time, and issues a token. Unknown account, inactive account, and wrong
// password all collapse to ErrInvalidCredentials before this returns.
func (a *Auth) Login(ctx context.Context, usernameOrEmail, password string) (*model.AdminUser, string, error) {
	admin, err := a.admins.FindAdminByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !admin.IsActive || !CheckPassword(password, admin.HashedPassword) {
		return nil, "", ErrInvalidCredentials
	}

	// Best effort; a failed stamp must not fail the login.
	_ = a.admins.UpdateAdminLastLogin(ctx, admin.ID)

	token, err := a.IssueToken(admin)
	if err != nil {
		return nil, "", err
	}

	sanitized := admin.Sanitized()
	return &sanitized, token, nil
}

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Anshika-404/MockMate/internal/models"
)

// Generic user-facing failures. Sign-in deliberately reports the same
// message for an unknown user and a bad credential.
var (
	ErrUserExists   = errors.New("user already exists, please sign in")
	ErrSignInFailed = errors.New("failed to log into account, please try again")
)

// UserStore is the subset of storage the gateway needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Gateway wraps the identity provider: it verifies provider-issued ID
// tokens, mints opaque session tokens, and resolves them back to users.
type Gateway struct {
	users      UserStore
	sessions   SessionStore
	verifier   *TokenVerifier
	sessionTTL time.Duration
	cookieName string
	secure     bool
}

// Config holds gateway construction parameters.
type Config struct {
	TokenSecret   string
	SessionTTL    time.Duration
	CookieName    string
	SecureCookies bool
}

// NewGateway creates the identity/session gateway.
func NewGateway(users UserStore, sessions SessionStore, cfg Config) *Gateway {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	name := cfg.CookieName
	if name == "" {
		name = "session"
	}

	return &Gateway{
		users:      users,
		sessions:   sessions,
		verifier:   NewTokenVerifier(cfg.TokenSecret),
		sessionTTL: ttl,
		cookieName: name,
		secure:     cfg.SecureCookies,
	}
}

// SignUp verifies the provider credential and creates the user profile.
// An existing profile is reported so the caller can direct the user to
// sign in instead.
func (g *Gateway) SignUp(ctx context.Context, idToken, name, email string) (*models.User, error) {
	claims, err := g.verifier.Verify(idToken)
	if err != nil {
		slog.Warn("sign-up with invalid credential", "error", err)
		return nil, ErrSignInFailed
	}

	existing, err := g.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	user := &models.User{
		ID:        claims.UserID,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := g.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// SignIn verifies the provider credential against the stored profile and
// mints a session token. All failure modes collapse into ErrSignInFailed.
func (g *Gateway) SignIn(ctx context.Context, email, idToken string) (string, error) {
	claims, err := g.verifier.Verify(idToken)
	if err != nil {
		slog.Warn("sign-in with invalid credential", "error", err)
		return "", ErrSignInFailed
	}

	user, err := g.users.GetUser(ctx, claims.UserID)
	if err != nil {
		slog.Error("sign-in user lookup failed", "error", err)
		return "", ErrSignInFailed
	}
	if user == nil {
		return "", ErrSignInFailed
	}
	if email != "" && !strings.EqualFold(email, user.Email) {
		return "", ErrSignInFailed
	}

	token, err := generateSessionToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	if err := g.sessions.Put(ctx, token, user.ID, g.sessionTTL); err != nil {
		slog.Error("failed to store session", "error", err)
		return "", ErrSignInFailed
	}

	return token, nil
}

// Resolve maps a session token to the user profile. Any validation failure
// (expired, unknown, tampered) yields (nil, nil): absence of a user is a
// normal outcome, never an error.
func (g *Gateway) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	userID, err := g.sessions.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			slog.Warn("session lookup failed", "error", err)
		}
		return nil, nil
	}

	user, err := g.users.GetUser(ctx, userID)
	if err != nil {
		slog.Warn("session user lookup failed", "error", err, "user_id", userID)
		return nil, nil
	}

	return user, nil
}

// Destroy invalidates a session token.
func (g *Gateway) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return g.sessions.Delete(ctx, token)
}

// SessionCookie builds the session cookie for a freshly minted token.
func (g *Gateway) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     g.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds an expired session cookie.
func (g *Gateway) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     g.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieName returns the configured session cookie name.
func (g *Gateway) CookieName() string {
	return g.cookieName
}

// generateSessionToken creates a cryptographically random 48-char hex token
func generateSessionToken() (string, error) {
	bytes := make([]byte, 24)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

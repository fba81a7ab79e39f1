package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Config struct {
	Secret   []byte
	Issuer   string
	Audience string

	AccessTTL time.Duration
}

// Manager issues and verifies HS256 access tokens. When a SessionStore is set
// every token is bound to a server-side session that can be revoked.
type Manager struct {
	cfg      Config
	sessions SessionStore
	now      func() time.Time
}

func New(cfg Config, sessions SessionStore) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, ErrConfig{Msg: "secret must be at least 32 bytes"}
	}
	if cfg.Issuer == "" {
		return nil, ErrConfig{Msg: "Issuer is required"}
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	return &Manager{cfg: cfg, sessions: sessions, now: time.Now}, nil
}

// IssueAccess returns a signed access token for the user.
func (m *Manager) IssueAccess(ctx context.Context, userID uuid.UUID) (string, *Claims, error) {
	if userID == uuid.Nil {
		return "", nil, ErrConfig{Msg: "user id is required"}
	}
	now := m.now()
	sid := uuid.New()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.AccessTTL)),
			ID:        uuid.NewString(),
		},
		Type:      TokenTypeAccess,
		SessionID: sid.String(),
		userID:    userID,
	}
	if m.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.cfg.Audience}
	}

	if m.sessions != nil {
		if err := m.sessions.Open(ctx, sid, userID, m.cfg.AccessTTL); err != nil {
			return "", nil, err
		}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Verify parses tokenStr, checks signature and registered claims, and when
// sessions are enabled confirms the session is still open.
func (m *Manager) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(m.cfg.Audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return m.cfg.Secret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrInvalidToken{Err: errors.New("not an access token")}
	}
	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	claims.userID = uid

	if m.sessions != nil {
		sid := claims.GetSessionID()
		if sid == nil {
			return nil, ErrInvalidToken{Err: ErrSessionRevoked}
		}
		ok, err := m.sessions.Active(ctx, *sid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidToken{Err: ErrSessionRevoked}
		}
	}
	return claims, nil
}

// Revoke closes the session behind claims.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.sessions == nil {
		return nil
	}
	sid := claims.GetSessionID()
	if sid == nil {
		return nil
	}
	return m.sessions.Close(ctx, *sid)
}

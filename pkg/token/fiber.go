package token

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mediconnect/mediconnect_backend/config"
)

const CtxKeyClaims = "auth.claims"

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c fiber.Ctx) (string, bool) {
	h := c.Get("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

func ClaimsFromFiber(c fiber.Ctx) (*Claims, bool) {
	v := c.Locals(CtxKeyClaims)
	if v == nil {
		return nil, false
	}
	cl, ok := v.(*Claims)
	return cl, ok
}

// NewManagerFromConfig builds a Manager from central config, with Redis
// sessions when a client is supplied.
func NewManagerFromConfig(cfg *config.Config, rdb *goredis.Client) (*Manager, error) {
	j := cfg.Authentication.JWT

	var sessions SessionStore
	if rdb != nil {
		sessions = NewRedisSessions(rdb)
	}

	return New(Config{
		Secret:    []byte(j.Secret),
		Issuer:    j.Issuer,
		Audience:  j.Audience,
		AccessTTL: time.Duration(j.AccessTTLMinutes) * time.Minute,
	}, sessions)
}

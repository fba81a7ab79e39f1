package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	redispkg "github.com/mediconnect/mediconnect_backend/pkg/redis"
)

const (
	ReasonCachePrefix = "mediconnect:reasons"
	ReasonCacheTTL    = 10 * time.Minute

	audiencePatient = "patient"
	audienceStaff   = "staff"
)

// ReasonCache holds the cancellation reason catalog per audience. Misses and
// cache failures fall through to the store.
type ReasonCache interface {
	Load(ctx context.Context, audience string) ([]repo.CancellationReason, bool)
	Store(ctx context.Context, audience string, reasons []repo.CancellationReason)
}

type redisReasonCache struct {
	cache *redispkg.JSONCache
	ttl   time.Duration
}

func NewRedisReasonCache(c *redispkg.JSONCache, ttl time.Duration) ReasonCache {
	if ttl <= 0 {
		ttl = ReasonCacheTTL
	}
	return &redisReasonCache{cache: c, ttl: ttl}
}

func (c *redisReasonCache) Load(ctx context.Context, audience string) ([]repo.CancellationReason, bool) {
	var out []repo.CancellationReason
	ok, err := c.cache.Load(ctx, audience, &out)
	if err != nil {
		slog.WarnContext(ctx, "reason cache read failed", "err", err)
		return nil, false
	}
	return out, ok
}

func (c *redisReasonCache) Store(ctx context.Context, audience string, reasons []repo.CancellationReason) {
	if err := c.cache.Store(ctx, audience, reasons, c.ttl); err != nil {
		slog.WarnContext(ctx, "reason cache write failed", "err", err)
	}
}

// DefaultReasons is the catalog installed by the seed command. Staff-only
// reasons describe clinic-side cancellations and stay hidden from patients.
func DefaultReasons() []repo.CancellationReason {
	return []repo.CancellationReason{
		{Description: "Motivos personales", Active: true},
		{Description: "Problemas de salud", Active: true},
		{Description: "Conflicto de horario", Active: true},
		{Description: "Viaje", Active: true},
		{Description: "Otro", Active: true},
		{Description: DefaultRescheduleReason, Active: true, StaffOnly: true},
		{Description: "Cancelación por el médico", Active: true, StaffOnly: true},
		{Description: "Cancelación por el paciente", Active: true, StaffOnly: true},
		{Description: "Enfermedad del médico", Active: true, StaffOnly: true},
		{Description: "Otros motivos médicos", Active: true, StaffOnly: true},
	}
}

// SeedReasons inserts the reasons missing from the catalog and returns how
// many were added.
func SeedReasons(ctx context.Context, q repo.Queries, reasons []repo.CancellationReason) (int, error) {
	added := 0
	for _, r := range reasons {
		err := q.CreateCancellationReason(ctx, &r)
		switch {
		case errors.Is(err, repo.ErrDuplicate):
		case err != nil:
			return added, fmt.Errorf("seed reason %q: %w", r.Description, err)
		default:
			added++
		}
	}
	return added, nil
}

package reqctx

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

func TestRequestMeta(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("empty context request id = %q", got)
	}
	ctx = WithRequestMeta(ctx, &RequestMeta{RequestID: "req-1"})
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("request id = %q, want req-1", got)
	}
}

func TestActor(t *testing.T) {
	ctx := context.Background()
	if _, ok := ActorFromContext(ctx); ok {
		t.Error("expected no actor")
	}
	a := authorize.Actor{UserID: uuid.New(), Roles: []authorize.Role{authorize.RolePatient}}
	got, ok := ActorFromContext(WithActor(ctx, a))
	if !ok || got.UserID != a.UserID {
		t.Errorf("actor = %+v, %v", got, ok)
	}
}

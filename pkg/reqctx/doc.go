// Package reqctx provides centralized request context management.
//
// Request metadata is set by HTTP middleware for every request. Claims and
// the resolved Actor are set only for authenticated requests:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: id})
//	ctx = reqctx.WithClaims(ctx, claims)
//	ctx = reqctx.WithActor(ctx, actor)
//
// Services and loggers read them back:
//
//	actor, ok := reqctx.ActorFromContext(ctx)
//	rid := reqctx.RequestIDFromContext(ctx)
package reqctx

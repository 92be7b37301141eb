package http

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ordering/internal/adapters/in/auth"
	"ordering/internal/core/domain/model/actor"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const actorKey = "actor"

// Authenticate resolves the bearer token into an actor. Requests without a
// valid token never reach the handlers.
func Authenticate(tokens *auth.TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			caller, err := tokens.Parse(ctx.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				body := toError(auth.ErrInvalidToken)
				return ctx.JSON(body.Code, body)
			}
			ctx.Set(actorKey, caller)
			return next(ctx)
		}
	}
}

func actorFrom(ctx echo.Context) (actor.Actor, bool) {
	caller, ok := ctx.Get(actorKey).(actor.Actor)
	return caller, ok
}

// RequestLogger logs one line per request through slog.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				logger.LogAttrs(c.Request().Context(), slog.LevelWarn, "incoming request", attrs...)
				return nil
			}
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "incoming request", attrs...)
			return nil
		},
	})
}

// RateLimiter keeps one token bucket per caller. Buckets idle for longer
// than idleTTL are dropped on the next sweep.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		burst:    burst,
		idleTTL:  3 * time.Minute,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Middleware refuses requests over the caller's budget with 429. The caller
// is the authenticated actor, or the client IP when there is none.
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			key := "ip:" + ctx.RealIP()
			if caller, ok := actorFrom(ctx); ok {
				key = "user:" + caller.ID().String()
			}

			if !l.allow(key) {
				return ctx.JSON(http.StatusTooManyRequests, Error{
					Code:    http.StatusTooManyRequests,
					Message: http.StatusText(http.StatusTooManyRequests),
				})
			}
			return next(ctx)
		}
	}
}

func (l *RateLimiter) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > time.Minute {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

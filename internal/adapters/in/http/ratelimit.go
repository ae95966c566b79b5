package http

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// LimiterStore keeps one token bucket per identifier. Buckets of idle
// callers expire after ttl.
type LimiterStore struct {
	mu       sync.Mutex
	limiters *cache.Cache
	r        rate.Limit
	b        int
}

func NewLimiterStore(r rate.Limit, b int, ttl time.Duration) *LimiterStore {
	return &LimiterStore{
		limiters: cache.New(ttl, 2*ttl),
		r:        r,
		b:        b,
	}
}

// Allow implements middleware.RateLimiterStore.
func (s *LimiterStore) Allow(identifier string) (bool, error) {
	return s.limiter(identifier).Allow(), nil
}

func (s *LimiterStore) limiter(identifier string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.limiters.Get(identifier); ok {
		s.limiters.SetDefault(identifier, l)
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(s.r, s.b)
	s.limiters.SetDefault(identifier, l)
	return l
}

// rateIdentifier keys authenticated callers by user id and anonymous ones by
// client address.
func rateIdentifier(c echo.Context) (string, error) {
	if actor, err := actorFrom(c); err == nil {
		return "user:" + actor.ID().String(), nil
	}
	return "ip:" + c.RealIP(), nil
}

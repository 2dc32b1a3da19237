package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"

	"github.com/ego5g/turizm/pkg/metrics"
)

// WindowStore is a fixed-window echo RateLimiterStore. A window opens with an
// identifier's first hit and expires window later.
type WindowStore struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   *cache.Cache
}

func NewWindowStore(limit int, window time.Duration) *WindowStore {
	return &WindowStore{limit: limit, window: window, hits: cache.New(window, 2*window)}
}

func (s *WindowStore) Allow(identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.hits.IncrementInt(identifier, 1)
	if err != nil {
		s.hits.Set(identifier, 1, s.window)
		n = 1
	}
	return n <= s.limit, nil
}

// RateLimit allows perMinute requests per client IP. Visitor ids are chosen
// by the client and are not used as the key. The IP comes from the echo
// instance's IPExtractor (see IPExtractor). Zero disables the limit.
func RateLimit(perMinute int, m *metrics.Metrics) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store:               NewWindowStore(perMinute, time.Minute),
		IdentifierExtractor: clientID,
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "could not identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if m != nil {
				m.RateLimited.Inc()
			}
			c.Response().Header().Set("Retry-After", "60")
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests. Please wait a minute and try again."})
		},
	})
}

func clientID(c echo.Context) (string, error) {
	return c.RealIP(), nil
}

// IPExtractor reads the client address from the connection, or from
// X-Forwarded-For when the server sits behind a trusted proxy.
func IPExtractor(trustProxy bool) echo.IPExtractor {
	if trustProxy {
		return echo.ExtractIPFromXFFHeader()
	}
	return echo.ExtractIPDirect()
}

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/ego5g/turizm/pkg/metrics"
)

func whoami(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	return c.String(http.StatusOK, uid)
}

func TestVisitor(t *testing.T) {
	e := echo.New()
	e.Use(Visitor())
	e.GET("/", whoami)

	known := uuid.NewString()
	cases := []struct {
		name      string
		cookie    string
		header    string
		keep      string
		newCookie bool
	}{
		{name: "fresh", newCookie: true},
		{name: "cookie", cookie: known, keep: known},
		{name: "header", header: known, keep: known},
		{name: "forged", cookie: "U_DEV_DEFAULT", newCookie: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if c.cookie != "" {
				req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: c.cookie})
			}
			if c.header != "" {
				req.Header.Set(VisitorHeader, c.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			got := rec.Body.String()
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("uid %q is not a uuid", got)
			}
			if c.keep != "" && got != c.keep {
				t.Errorf("uid = %q, want %q", got, c.keep)
			}
			set := rec.Header().Get(echo.HeaderSetCookie)
			if c.newCookie != (set != "") {
				t.Errorf("Set-Cookie = %q", set)
			}
			if c.newCookie && !strings.Contains(set, got) {
				t.Errorf("cookie %q does not carry uid %q", set, got)
			}
		})
	}
}

func TestWindowStore(t *testing.T) {
	s := NewWindowStore(2, 50*time.Millisecond)
	for i, want := range []bool{true, true, false} {
		if ok, _ := s.Allow("a"); ok != want {
			t.Errorf("hit %d: allow = %v", i+1, ok)
		}
	}
	if ok, _ := s.Allow("b"); !ok {
		t.Error("b shares a's window")
	}
	time.Sleep(80 * time.Millisecond)
	if ok, _ := s.Allow("a"); !ok {
		t.Error("window did not reset")
	}
}

func TestRateLimitKeysOnClientAddress(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.IPExtractor = IPExtractor(false)
	e.Use(Visitor())
	e.POST("/api/generate", whoami, RateLimit(1, m))

	send := func(remote string, header http.Header) int {
		req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
		req.RemoteAddr = remote
		for k, v := range header {
			req.Header[k] = v
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	codes := map[int]int{}
	for i := 0; i < 20; i++ {
		codes[send("203.0.113.7:40000", nil)]++
	}
	if codes[http.StatusOK] != 1 || codes[http.StatusTooManyRequests] != 19 {
		t.Errorf("cookie-less requests: %v", codes)
	}

	forged := http.Header{}
	forged.Set(VisitorHeader, uuid.NewString())
	forged.Set(echo.HeaderXForwardedFor, "198.51.100.1")
	if code := send("203.0.113.7:40001", forged); code != http.StatusTooManyRequests {
		t.Errorf("new visitor id and forwarded-for from the same address: %d", code)
	}
	if code := send("192.0.2.44:40000", nil); code != http.StatusOK {
		t.Errorf("other address: %d", code)
	}
	if got := testutil.ToFloat64(m.RateLimited); got != 20 {
		t.Errorf("rate limited = %v", got)
	}
}

func TestRateLimitBehindProxy(t *testing.T) {
	e := echo.New()
	e.IPExtractor = IPExtractor(true)
	e.POST("/api/generate", whoami, RateLimit(1, nil))

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
		req.RemoteAddr = "127.0.0.1:5000"
		req.Header.Set(echo.HeaderXForwardedFor, client)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	if send("203.0.113.7") != http.StatusOK || send("203.0.113.8") != http.StatusOK {
		t.Error("distinct forwarded clients share a window")
	}
	if code := send("203.0.113.7"); code != http.StatusTooManyRequests {
		t.Errorf("repeat forwarded client: %d", code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	e := echo.New()
	e.GET("/", whoami, RateLimit(0, nil))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, rec.Code)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	m := metrics.New()
	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf), m))
	e.GET("/api/plans/:id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "plan not found"})
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/plans/abc", nil))

	line := buf.String()
	for _, want := range []string{`"level":"warn"`, `"status":404`, `"uri":"/api/plans/abc"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log %s missing %s", line, want)
		}
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/plans/:id", "404")); got != 1 {
		t.Errorf("requests counter = %v", got)
	}
}

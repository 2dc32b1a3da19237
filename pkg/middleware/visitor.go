package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	VisitorCookie = "turizm_visitor"
	VisitorHeader = "X-Visitor-Id"
	visitorMaxAge = 365 * 24 * time.Hour
)

// Visitor identifies the browser behind a request. API clients may send the
// id in X-Visitor-Id instead of the cookie. A missing or malformed id is
// replaced with a fresh one. Handlers read it with c.Get("uid").
func Visitor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := c.Request().Header.Get(VisitorHeader)
			if uid == "" {
				if ck, err := c.Cookie(VisitorCookie); err == nil {
					uid = ck.Value
				}
			}
			if _, err := uuid.Parse(uid); err != nil || uid == "" {
				uid = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     VisitorCookie,
					Value:    uid,
					Path:     "/",
					MaxAge:   int(visitorMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}

package controllerImp

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/ego5g/turizm/pkg/export"
	"github.com/ego5g/turizm/pkg/history"
	itinerarySvc "github.com/ego5g/turizm/pkg/itinerary/serviceImp"
	"github.com/ego5g/turizm/pkg/plan/service"
	"github.com/ego5g/turizm/pkg/planner"
)

var matcher = language.NewMatcher(itinerarySvc.Languages)

type PlanCtrl struct {
	svc service.PlanService
	log zerolog.Logger
}

func NewPlanCtrl(svc service.PlanService, log zerolog.Logger) *PlanCtrl {
	return &PlanCtrl{svc: svc, log: log}
}

type createReq struct {
	planner.Form
	Language string `json:"language"`
}

func uid(c echo.Context) string {
	v, _ := c.Get("uid").(string)
	return v
}

// List returns the visitor's history panel, newest first, with the latest
// completed plan selected.
func (h *PlanCtrl) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.View(uid(c)))
}

// Create handles POST /api/plans. The plan is returned while still generating.
func (h *PlanCtrl) Create(c echo.Context) error {
	var req createReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	lang, ok := requestLanguage(req.Language, c.Request().Header.Get("Accept-Language"))
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported language: " + req.Language})
	}

	p, err := h.svc.Generate(uid(c), lang, req.Form)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusAccepted, p)
}

func (h *PlanCtrl) Get(c echo.Context) error {
	p, err := h.svc.Get(uid(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PlanCtrl) Delete(c echo.Context) error {
	if err := h.svc.Delete(uid(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PlanCtrl) Clear(c echo.Context) error {
	if err := h.svc.Clear(uid(c)); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Edit returns the plan's inputs for the request form.
func (h *PlanCtrl) Edit(c echo.Context) error {
	f, err := h.svc.Edit(uid(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *PlanCtrl) Cancel(c echo.Context) error {
	if !h.svc.Cancel(uid(c), c.Param("id")) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no generation in progress"})
	}
	return c.NoContent(http.StatusAccepted)
}

// Export handles GET /api/plans/:id/export?format=xlsx|ics|md&start=2006-01-02
func (h *PlanCtrl) Export(c echo.Context) error {
	f, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "format must be xlsx, ics or md"})
	}
	var opts export.Options
	if s := c.QueryParam("start"); s != "" {
		start, err := time.ParseInLocation(time.DateOnly, s, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "start must be YYYY-MM-DD"})
		}
		opts.Start = start
	}

	var buf bytes.Buffer
	p, err := h.svc.Export(uid(c), c.Param("id"), &buf, f, opts)
	if err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.FileName(p, f)))
	return c.Blob(http.StatusOK, f.ContentType(), buf.Bytes())
}

func (h *PlanCtrl) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidForm):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Please provide a destination and duration."})
	case errors.Is(err, history.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "plan not found"})
	case errors.Is(err, history.ErrNotCompleted), errors.Is(err, export.ErrNotCompleted):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	h.log.Error().Err(err).Str("path", c.Path()).Msg("plan request failed")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// requestLanguage prefers an explicit code, then Accept-Language, then English.
func requestLanguage(explicit, accept string) (string, bool) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if _, ok := itinerarySvc.LookupLanguage(explicit); !ok {
			return "", false
		}
		return explicit, true
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return "en", true
	}
	tag, _, conf := matcher.Match(tags...)
	if conf == language.No {
		return "en", true
	}
	base, _ := tag.Base()
	return base.String(), true
}

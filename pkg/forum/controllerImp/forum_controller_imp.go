package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ego5g/turizm/pkg/forum/service"
)

type ForumCtrl struct {
	svc service.ForumService
	log zerolog.Logger
}

func NewForumCtrl(svc service.ForumService, log zerolog.Logger) *ForumCtrl {
	return &ForumCtrl{svc: svc, log: log}
}

func (h *ForumCtrl) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"categories": h.svc.Categories()})
}

// ListTopics handles GET /api/forum/topics?category=&q=
func (h *ForumCtrl) ListTopics(c echo.Context) error {
	topics, err := h.svc.GetTopics(c.Request().Context(), service.Filter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("q"),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("list topics")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load topics"})
	}
	return c.JSON(http.StatusOK, map[string]any{"topics": topics})
}

func (h *ForumCtrl) CreateTopic(c echo.Context) error {
	var in service.NewTopic
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	t, err := h.svc.CreateTopic(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// GetTopic counts a view unless ?view=0.
func (h *ForumCtrl) GetTopic(c echo.Context) error {
	ctx := c.Request().Context()
	get := h.svc.ViewTopic
	if c.QueryParam("view") == "0" {
		get = h.svc.GetTopic
	}
	t, err := get(ctx, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *ForumCtrl) CreateReply(c echo.Context) error {
	var in service.NewReply
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	r, err := h.svc.CreateReply(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *ForumCtrl) fail(c echo.Context, err error) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": vErr.Message})
	case errors.Is(err, service.ErrTopicNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "topic not found"})
	case errors.Is(err, service.ErrRetryable):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": service.ErrRetryable.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("forum request failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

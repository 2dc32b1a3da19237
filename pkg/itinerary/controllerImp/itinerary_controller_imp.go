package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ego5g/turizm/pkg/itinerary/service"
)

type ItineraryCtrl struct{ svc service.ItineraryService }

func NewItineraryCtrl(svc service.ItineraryService) *ItineraryCtrl { return &ItineraryCtrl{svc: svc} }

// Generate handles POST /api/generate.
func (h *ItineraryCtrl) Generate(c echo.Context) error {
	var req service.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	text, err := h.svc.Generate(c.Request().Context(), req)
	if err != nil {
		var inErr *service.InputError
		var genErr *service.GenerationError
		switch {
		case errors.As(err, &inErr):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": inErr.Message})
		case errors.As(err, &genErr):
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": genErr.Message})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"itinerary": text})
}

package controller

import "github.com/labstack/echo/v4"

type ItineraryController interface {
	Generate(c echo.Context) error
}

package controller

import "github.com/labstack/echo/v4"

type PlanController interface {
	List(c echo.Context) error
	Create(c echo.Context) error
	Get(c echo.Context) error
	Delete(c echo.Context) error
	Clear(c echo.Context) error
	Edit(c echo.Context) error
	Cancel(c echo.Context) error
	Export(c echo.Context) error
}

package controller

import "github.com/labstack/echo/v4"

type ForumController interface {
	Categories(c echo.Context) error
	ListTopics(c echo.Context) error
	CreateTopic(c echo.Context) error
	GetTopic(c echo.Context) error
	CreateReply(c echo.Context) error
}

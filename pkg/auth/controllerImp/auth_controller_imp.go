package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ego5g/turizm/pkg/auth/controller"
)

type authCtrl struct{}

func NewAuthController() controller.AuthController { return &authCtrl{} }

// WhoAmI returns the visitor id assigned by the Visitor middleware.
func (h *authCtrl) WhoAmI(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	return c.JSON(http.StatusOK, map[string]string{"uid": uid})
}

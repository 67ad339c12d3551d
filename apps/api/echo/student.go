package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/student"
)

type (
	studentApi struct {
		svc student.ServiceInterface
	}

	PromoteResponse struct {
		Success  bool                    `json:"success"`
		Message  string                  `json:"message"`
		Promoted int                     `json:"promoted"`
		Result   student.PromotionResult `json:"result"`
	}

	InactivityResponse struct {
		Success  bool                `json:"success"`
		Message  string              `json:"message"`
		Inactive int                 `json:"inactive"`
		Result   student.SweepResult `json:"result"`
	}
)

func registerStudentAPI(g *echo.Group, svc student.ServiceInterface) {
	api := studentApi{svc: svc}

	sg := g.Group("/students", adminMiddleware())
	sg.POST("/promote", api.promote)
	sg.GET("/check-inactivity", api.checkInactivity)
	sg.POST("/check-inactivity", api.checkInactivity)
}

func (api *studentApi) promote(ctx echo.Context) error {
	var data student.PromoteRequest
	if err := bind(ctx, &data, "PromoteRequest"); err != nil {
		return err
	}

	res, err := api.svc.Promote(ctx.Request().Context(), data.AcademicYear)
	if err != nil {
		return errors.Wrap(err, "promoting students")
	}
	return ctx.JSON(http.StatusOK, PromoteResponse{
		Success:  true,
		Message:  "Promotion complete",
		Promoted: res.Promoted,
		Result:   res,
	})
}

func (api *studentApi) checkInactivity(ctx echo.Context) error {
	res, err := api.svc.CheckInactivity(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "checking inactivity")
	}
	return ctx.JSON(http.StatusOK, InactivityResponse{
		Success:  true,
		Message:  "Inactivity check complete",
		Inactive: res.Inactive,
		Result:   res,
	})
}

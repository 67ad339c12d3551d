package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/result"
)

type (
	resultApi struct {
		svc      result.ServiceInterface
		validate *validator.Validate
	}

	ExamStatisticsResponse struct {
		Success bool              `json:"success"`
		Data    result.Statistics `json:"data"`
	}
)

func registerResultAPI(g *echo.Group, svc result.ServiceInterface, validate *validator.Validate) {
	api := resultApi{svc: svc, validate: validate}

	g.GET("/exams/:id/statistics", api.examStatistics, staffMiddleware())
}

func (api *resultApi) examStatistics(ctx echo.Context) error {
	var query result.StatisticsQuery
	if err := bind(ctx, &query, "StatisticsQuery"); err != nil {
		return err
	}
	filter, err := query.Validate(api.validate, ctx.Param("id"))
	if err != nil {
		return err
	}

	stats, err := api.svc.ExamStatistics(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "computing exam statistics")
	}
	return ctx.JSON(http.StatusOK, ExamStatisticsResponse{Success: true, Data: stats})
}

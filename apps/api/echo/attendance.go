package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/attendance"
)

type (
	attendanceApi struct {
		svc      attendance.ServiceInterface
		validate *validator.Validate
	}

	AttendanceReportResponse struct {
		Success bool              `json:"success"`
		Data    attendance.Report `json:"data"`
	}

	BulkMarkResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Count   int    `json:"count"`
	}
)

var attendanceOrderings = []string{"date", "student_id"}

func registerAttendanceAPI(g *echo.Group, svc attendance.ServiceInterface, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}

	ag := g.Group("/attendance", staffMiddleware())
	ag.GET("/report", api.report)
	ag.POST("/bulk", api.markBulk)
}

func (api *attendanceApi) report(ctx echo.Context) error {
	var query attendance.ReportQuery
	if err := bind(ctx, &query, "ReportQuery"); err != nil {
		return err
	}
	filter, err := query.Validate(api.validate)
	if err != nil {
		return err
	}
	var ord Ordering
	if err := ord.Bind(ctx, attendanceOrderings...); err != nil {
		return err
	}
	filter.Orderings = ord.Orderings

	report, err := api.svc.Report(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building attendance report")
	}
	return ctx.JSON(http.StatusOK, AttendanceReportResponse{Success: true, Data: report})
}

func (api *attendanceApi) markBulk(ctx echo.Context) error {
	var data attendance.BulkMark
	if err := bind(ctx, &data, "BulkMark"); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	count, err := api.svc.MarkBulk(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, BulkMarkResponse{
		Success: true,
		Message: "Attendance marked successfully",
		Count:   count,
	})
}

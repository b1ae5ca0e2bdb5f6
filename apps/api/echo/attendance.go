package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/attendance"
)

var refDateLayout = "2006-01-02"

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.board)
	ag.GET("/records", api.records)
	ag.POST("/settle", api.settle)
	ag.GET("/payments", api.payments)
	ag.GET("/archive", api.archive)
}

// Handlers

// board returns the derived remuneration view for a reference day
// (`?date=YYYY-MM-DD`, today by default).
func (api *attendanceApi) board(ctx echo.Context) error {
	ref, err := bindRefDate(ctx)
	if err != nil {
		return err
	}

	board, err := api.svc.Board(ctx.Request().Context(), ref)
	if err != nil {
		return errors.Wrap(err, "computing attendance board")
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *attendanceApi) records(ctx echo.Context) error {
	records, err := api.svc.Records(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) settle(ctx echo.Context) error {
	var data SettleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SettleRequest")
	}
	if core.CleanString(data.WorkerName) == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "worker_name", Error: "this field is required"})
	}

	ref := time.Now()
	if data.Date != "" {
		var err error
		if ref, err = time.Parse(refDateLayout, data.Date); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "expected format: " + refDateLayout})
		}
	}

	pmt, err := api.svc.Settle(ctx.Request().Context(), data.WorkerName, ref)
	if err != nil {
		if errors.Cause(err) == attendance.ErrNothingToSettle {
			return core.NewValidationError(attendance.ErrNothingToSettle)
		}
		return errors.Wrap(err, "settling worker")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *attendanceApi) payments(ctx echo.Context) error {
	payments, err := api.svc.Payments(ctx.Request().Context(), ctx.QueryParam("worker"))
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []attendance.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *attendanceApi) archive(ctx echo.Context) error {
	filter := attendance.ArchiveFilter{Search: ctx.QueryParam("search")}

	records, err := api.svc.Archived(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying archived records")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func bindRefDate(ctx echo.Context) (time.Time, error) {
	val := ctx.QueryParam("date")
	if val == "" {
		return time.Now(), nil
	}
	ref, err := time.Parse(refDateLayout, val)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "expected format: " + refDateLayout})
	}
	return ref, nil
}

type SettleRequest struct {
	WorkerName string `json:"worker_name"`
	Date       string `json:"date,omitempty"`
}

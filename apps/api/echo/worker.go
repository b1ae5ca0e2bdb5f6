package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/operaxhq/operax/core/worker"
)

var errWrkNotFoundInCtx = errors.New("worker object not found in echo.Context")

type workerApi struct {
	svc      *worker.Service
	validate *validator.Validate
}

func registerWorkerAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *worker.Service, validate *validator.Validate) {
	api := workerApi{
		svc:      svc,
		validate: validate,
	}

	wg := g.Group("/workers", jwt)
	wg.POST("", api.create)
	wg.GET("", api.query)
	wg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := wg.Group("/:id", workerObjectMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *workerApi) create(ctx echo.Context) error {
	var data worker.NewWorker
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWorker")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	wrk, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating worker")
	}

	return ctx.JSON(http.StatusCreated, wrk)
}

func (api *workerApi) query(ctx echo.Context) error {
	filter := new(worker.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []worker.Worker{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	workers, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying workers")
	}
	if workers == nil {
		workers = []worker.Worker{}
	}
	return ctx.JSON(http.StatusOK, workers)
}

func (api *workerApi) retrieve(ctx echo.Context) error {
	wrk, ok := ctx.Get("object").(worker.Worker)
	if !ok {
		return errors.Wrap(errWrkNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, wrk)
}

func (api *workerApi) update(ctx echo.Context) error {
	wrk, ok := ctx.Get("object").(worker.Worker)
	if !ok {
		return errors.Wrap(errWrkNotFoundInCtx, "retrieving object from context")
	}

	var data worker.UpdateWorker
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateWorker")
	}
	if err := data.Validate(wrk, api.validate, api.svc); err != nil {
		return err
	}

	wrk, err := api.svc.Update(ctx.Request().Context(), wrk.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating worker")
	}

	return ctx.JSON(http.StatusOK, wrk)
}

func (api *workerApi) destroy(ctx echo.Context) error {
	wrk, ok := ctx.Get("object").(worker.Worker)
	if !ok {
		return errors.Wrap(errWrkNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), wrk.ID); err != nil {
		return errors.Wrap(err, "deleting worker")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *workerApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting workers")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func workerObjectMiddleware(svc *worker.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			wrk, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == worker.ErrNotFound {
					return errHTTPNotFound
				}
				return errors.Wrap(err, "finding worker by ID")
			}
			ctx.Set("object", wrk)
			return next(ctx)
		}
	}
}

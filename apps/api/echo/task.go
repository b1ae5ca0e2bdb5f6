package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/operaxhq/operax/core/task"
)

var errTskNotFoundInCtx = errors.New("task object not found in echo.Context")

type taskApi struct {
	svc      *task.Service
	validate *validator.Validate
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *task.Service, validate *validator.Validate) {
	api := taskApi{
		svc:      svc,
		validate: validate,
	}

	tg := g.Group("/tasks", jwt)
	tg.POST("", api.create)
	tg.GET("", api.query)
	tg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := tg.Group("/:id", taskObjectMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.POST("/toggle", api.toggleCompletion)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *taskApi) create(ctx echo.Context) error {
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tsk, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}

	return ctx.JSON(http.StatusCreated, tsk)
}

func (api *taskApi) query(ctx echo.Context) error {
	filter := new(task.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []task.Task{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	tasks, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	tsk, ok := ctx.Get("object").(task.Task)
	if !ok {
		return errors.Wrap(errTskNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) update(ctx echo.Context) error {
	tsk, ok := ctx.Get("object").(task.Task)
	if !ok {
		return errors.Wrap(errTskNotFoundInCtx, "retrieving object from context")
	}

	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(tsk, api.validate); err != nil {
		return err
	}

	tsk, err := api.svc.Update(ctx.Request().Context(), tsk.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}

	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) toggleCompletion(ctx echo.Context) error {
	tsk, ok := ctx.Get("object").(task.Task)
	if !ok {
		return errors.Wrap(errTskNotFoundInCtx, "retrieving object from context")
	}

	tsk, err := api.svc.ToggleCompletion(ctx.Request().Context(), tsk.ID)
	if err != nil {
		return errors.Wrap(err, "toggling task completion")
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	tsk, ok := ctx.Get("object").(task.Task)
	if !ok {
		return errors.Wrap(errTskNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), tsk.ID); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func taskObjectMiddleware(svc *task.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tsk, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == task.ErrNotFound {
					return errHTTPNotFound
				}
				return errors.Wrap(err, "finding task by ID")
			}
			ctx.Set("object", tsk)
			return next(ctx)
		}
	}
}

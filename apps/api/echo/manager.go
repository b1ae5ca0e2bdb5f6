package echoapi

import (
	"net/http"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/manager"
)

var (
	errMgrNotFoundInCtx  = errors.New("manager object not found in echo.Context")
	errNoPermsToSetRoles = "not enough rights to set these roles"
)

type managerApi struct {
	svc      *manager.Service
	validate *validator.Validate
}

func registerManagerAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *manager.Service, validate *validator.Validate) {
	api := managerApi{
		svc:      svc,
		validate: validate,
	}

	mg := g.Group("/managers")

	// un-authed endpoints
	mg.POST("/login", api.login)
	mg.POST("/password-reset", api.resetPassword)
	mg.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := mg.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/register", api.create, adminMiddleware())
	ag.GET("", api.query, adminMiddleware())
	ag.DELETE("", api.destroyMultiple, adminMiddleware())
	ag.GET("/roles", api.queryRoles, adminMiddleware())

	// detail endpoints
	dg := ag.Group("/:id", ctxManagerOrAdminMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *managerApi) create(ctx echo.Context) error {
	var data manager.NewManager
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewManager")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	// ctxManager cannot set a role > their own max role
	ctxMgr, err := getContextManager(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context manager")
	}
	if manager.MaxRolePriority(data.Roles) > manager.MaxRolePriority(ctxMgr.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	mgr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating manager")
	}

	return ctx.JSON(http.StatusCreated, mgr)
}

func (api *managerApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Email, data.Password, api.svc)
	if err != nil {
		if errors.Cause(err) == manager.ErrNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *managerApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == manager.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *managerApi) confirmPasswordReset(ctx echo.Context) error {
	var data manager.ResetManagerPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetManagerPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *managerApi) query(ctx echo.Context) error {
	filter := new(manager.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []manager.Manager{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	mgrs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying managers")
	}
	if mgrs == nil {
		mgrs = []manager.Manager{}
	}
	return ctx.JSON(http.StatusOK, mgrs)
}

func (api *managerApi) retrieve(ctx echo.Context) error {
	mgr, ok := ctx.Get("object").(manager.Manager)
	if !ok {
		return errors.Wrap(errMgrNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, mgr)
}

func (api *managerApi) update(ctx echo.Context) error {
	mgr, ok := ctx.Get("object").(manager.Manager)
	if !ok {
		return errors.Wrap(errMgrNotFoundInCtx, "retrieving object from context")
	}

	var data manager.UpdateManager
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateManager")
	}

	ctxMgr, err := getContextManager(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context manager")
	}
	if !ctxMgr.IsAdmin() {
		// `IsActive`, `Roles` and `Email` can only be changed by admin
		if data.IsActive != nil || data.Roles != nil || data.Email != "" {
			return errHTTPForbidden
		}
	}

	if err := data.Validate(mgr, api.validate, api.svc); err != nil {
		return err
	}

	// ctxManager cannot set a role > their own max role
	if manager.MaxRolePriority(data.Roles) > manager.MaxRolePriority(ctxMgr.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	mgr, err = api.svc.Update(ctx.Request().Context(), mgr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating manager")
	}

	return ctx.JSON(http.StatusOK, mgr)
}

func (api *managerApi) destroy(ctx echo.Context) error {
	mgr, ok := ctx.Get("object").(manager.Manager)
	if !ok {
		return errors.Wrap(errMgrNotFoundInCtx, "retrieving object from context")
	}

	// ctxManager cannot delete themselves
	ctxMgr, err := getContextManager(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context manager")
	}
	if mgr.ID == ctxMgr.ID {
		return errHTTPForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), mgr.ID); err != nil {
		return errors.Wrap(err, "deleting manager")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *managerApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// ctxManager cannot delete themselves
	ctxMgr, err := getContextManager(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context manager")
	}
	sort.Strings(query.IDs)
	if i := sort.SearchStrings(query.IDs, ctxMgr.ID); i < len(query.IDs) {
		if match := query.IDs[i]; ctxMgr.ID == match {
			return errHTTPForbidden
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting managers")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *managerApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, manager.Roles)
}

func (api *managerApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func ctxManagerOrAdminMiddleware(svc *manager.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxMgr, err := getContextManager(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context manager")
			}

			if ctx.Param("id") == ctxMgr.ID || ctxMgr.IsAdmin() {
				if mgr, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err == nil {
					ctx.Set("object", mgr)
					return next(ctx)
				} else if errors.Cause(err) != manager.ErrNotFound {
					return errors.Wrap(err, "finding manager by ID")
				}
			}
			return errHTTPNotFound
		}
	}
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

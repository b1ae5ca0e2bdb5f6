package manager

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/operaxhq/operax/core"
)

var (
	// errors
	ErrNotFound    = errors.New("manager not found")
	ErrEmailExists = errors.New("a manager with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedManagers ...Manager) error
		CreateManager(ctx context.Context, mgr Manager) (Manager, error)
		// QueryManagers applies AND over the available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Name or Email.
		QueryManagers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Manager, error)
		GetManager(ctx context.Context, filter GetFilter) (Manager, error)
		UpdateManager(ctx context.Context, mgr Manager, isActive *bool) (Manager, error)
		DeleteManagersByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) checkEmailUniqueness(email string, exclMgrs ...Manager) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclMgrs...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nm NewManager) (Manager, error) {
	now := time.Now().UTC()
	active := true
	mgr := Manager{
		Name:      nm.Name,
		Email:     nm.Email,
		IsActive:  &active,
		Roles:     nm.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := mgr.SetPassword(nm.Password); err != nil {
		return Manager{}, err
	}
	return svc.repo.CreateManager(ctx, mgr)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Manager, error) {
	return svc.repo.QueryManagers(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Manager, error) {
	return svc.repo.GetManager(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Manager, error) {
	return svc.repo.GetManager(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Update(ctx context.Context, id string, um UpdateManager) (Manager, error) {
	mgr := Manager{
		ID:        id,
		Name:      um.Name,
		Email:     um.Email,
		Roles:     um.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if um.Password != "" {
		if err := mgr.SetPassword(um.Password); err != nil {
			return Manager{}, err
		}
	}
	return svc.repo.UpdateManager(ctx, mgr, um.IsActive)
}

func (svc *Service) SetLastLogin(ctx context.Context, mgr Manager) (Manager, error) {
	mgr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateManager(ctx, mgr, nil)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteManagersByID(ctx, ids...)
	return err
}

// RequestPasswordReset emails a reset link to the account, if it is active.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	mgr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if mgr.IsActive != nil && !*mgr.IsActive {
		return ErrNotFound
	}

	token, err := MakeToken(svc.conf, mgr)
	if err != nil {
		return pkgerrors.Wrap(err, "making reset token")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: mgr.Name, Address: mgr.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			Manager Manager
			UID     string
			Token   string
		}{mgr, EncodeUID(mgr), token},
	})
	return nil
}

// ResetPassword sets a new password from a valid reset token.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetManagerPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(fmt.Errorf("invalid uid"))
	}
	mgr, err := svc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err = verifyToken(svc.conf, mgr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = mgr.SetPassword(rp.Password); err != nil {
		return err
	}
	mgr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateManager(ctx, mgr, nil)
	return pkgerrors.Wrap(err, "updating password")
}

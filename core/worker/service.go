package worker

import (
	"context"
	"errors"
	"time"

	"github.com/operaxhq/operax/core"
)

var (
	// errors
	ErrNotFound    = errors.New("worker not found")
	ErrBadgeExists = errors.New("a worker with this badge already exists")
)

type (
	Repository interface {
		CheckBadgeUniqueness(ctx context.Context, badgeID string, excludedWorkers ...Worker) error
		CreateWorker(ctx context.Context, wrk Worker) (Worker, error)
		// QueryWorkers applies QueryFilter.Search as a case-insensitive match on
		// first name, last name or badge id.
		QueryWorkers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Worker, error)
		GetWorker(ctx context.Context, id string) (Worker, error)
		UpdateWorker(ctx context.Context, wrk Worker) (Worker, error)
		DeleteWorkersByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkBadgeUniqueness(badgeID string, exclWorkers ...Worker) error {
	if err := svc.repo.CheckBadgeUniqueness(context.Background(), badgeID, exclWorkers...); err != nil {
		if err == ErrBadgeExists {
			return core.NewValidationError(err, core.FieldError{Field: "badge_id", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nw NewWorker) (Worker, error) {
	wrk := Worker{
		FirstName: nw.FirstName,
		LastName:  nw.LastName,
		BadgeID:   nw.BadgeID,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateWorker(ctx, wrk)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Worker, error) {
	return svc.repo.QueryWorkers(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Worker, error) {
	return svc.repo.GetWorker(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uw UpdateWorker) (Worker, error) {
	wrk := Worker{
		ID:        id,
		FirstName: uw.FirstName,
		LastName:  uw.LastName,
		BadgeID:   uw.BadgeID,
	}
	return svc.repo.UpdateWorker(ctx, wrk)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteWorkersByID(ctx, ids...)
	return err
}

package task

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/operaxhq/operax/core"
)

var (
	// errors
	ErrNotFound = errors.New("task not found")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, tsk Task) (Task, error)
		// QueryTasks applies AND over the available QueryFilter fields;
		// QueryFilter.Search does a case-insensitive match on title or description.
		QueryTasks(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Task, error)
		GetTask(ctx context.Context, id string) (Task, error)
		UpdateTask(ctx context.Context, tsk Task, completed *bool) (Task, error)
		DeleteTasksByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nt NewTask) (Task, error) {
	tsk := Task{
		Title:       nt.Title,
		Description: nt.Description,
		WorkerID:    nt.WorkerID,
		Month:       nt.Month,
		Year:        nt.Year,
		Day:         nt.Day,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateTask(ctx, tsk)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Task, error) {
	return svc.repo.QueryTasks(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Task, error) {
	return svc.repo.GetTask(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTask) (Task, error) {
	tsk := Task{
		ID:       id,
		Title:    ut.Title,
		WorkerID: ut.WorkerID,
		Month:    ut.Month,
		Year:     ut.Year,
		Day:      ut.Day,
	}
	if ut.Description != nil {
		tsk.Description = *ut.Description
	}
	return svc.repo.UpdateTask(ctx, tsk, ut.Completed)
}

// ToggleCompletion flips a task's completed flag and returns the updated task.
func (svc *Service) ToggleCompletion(ctx context.Context, id string) (Task, error) {
	tsk, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	completed := !tsk.Completed
	tsk, err = svc.repo.UpdateTask(ctx, tsk, &completed)
	return tsk, pkgerrors.Wrap(err, "toggling task completion")
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteTasksByID(ctx, ids...)
	return err
}

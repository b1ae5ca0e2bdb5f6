package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) query() []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		tasks = append(tasks, *t)
	}
	return tasks
}

func (repo *taskRepository) CreateTask(_ context.Context, tsk task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tsk.ID = uuid.New().String()
	repo.db.table[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *taskRepository) QueryTasks(_ context.Context, filter *task.QueryFilter, ordering []core.DBOrdering) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := repo.query()

	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			search := strings.ToLower(filter.Search)
			var filtered []task.Task
			for _, t := range tasks {
				if strings.Contains(strings.ToLower(t.Title), search) ||
					strings.Contains(strings.ToLower(t.Description), search) {
					filtered = append(filtered, t)
				}
			}
			tasks = filtered
		}
		if filter.Month != 0 {
			var filtered []task.Task
			for _, t := range tasks {
				if t.Month == filter.Month {
					filtered = append(filtered, t)
				}
			}
			tasks = filtered
		}
		if filter.Year != 0 {
			var filtered []task.Task
			for _, t := range tasks {
				if t.Year == filter.Year {
					filtered = append(filtered, t)
				}
			}
			tasks = filtered
		}
		if filter.WorkerID != "" {
			var filtered []task.Task
			for _, t := range tasks {
				if t.WorkerID != nil && *t.WorkerID == filter.WorkerID {
					filtered = append(filtered, t)
				}
			}
			tasks = filtered
		}
		if filter.Completed != nil {
			var filtered []task.Task
			for _, t := range tasks {
				if t.Completed == *filter.Completed {
					filtered = append(filtered, t)
				}
			}
			tasks = filtered
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Year != tasks[j].Year {
			return tasks[i].Year < tasks[j].Year
		}
		if tasks[i].Month != tasks[j].Month {
			return tasks[i].Month < tasks[j].Month
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (repo *taskRepository) GetTask(_ context.Context, id string) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tsk, ok := repo.db.table[id]; ok {
		return *tsk, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) UpdateTask(_ context.Context, tsk task.Task, completed *bool) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origTsk, ok := repo.db.table[tsk.ID]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	origTsk.Title = tsk.Title
	origTsk.Description = tsk.Description
	origTsk.WorkerID = tsk.WorkerID
	origTsk.Month = tsk.Month
	origTsk.Year = tsk.Year
	origTsk.Day = tsk.Day
	if completed != nil {
		origTsk.Completed = *completed
	}

	repo.db.table[tsk.ID] = origTsk
	return *origTsk, nil
}

func (repo *taskRepository) DeleteTasksByID(_ context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}

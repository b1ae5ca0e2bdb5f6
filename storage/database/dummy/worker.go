package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/worker"
)

type workerRepository struct {
	db *workerTable
}

var _ worker.Repository = (*workerRepository)(nil) // interface compliance check

func NewWorkerRepository(db *DB) worker.Repository {
	return &workerRepository{db: db.worker}
}

func (repo *workerRepository) query() []worker.Worker {
	workers := make([]worker.Worker, 0, len(repo.db.table))
	for _, w := range repo.db.table {
		workers = append(workers, *w)
	}
	return workers
}

func (repo *workerRepository) CheckBadgeUniqueness(_ context.Context, badgeID string, excludedWorkers ...worker.Worker) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedWorkers))
	for _, w := range excludedWorkers {
		excluded[w.ID] = true
	}

	for _, wrk := range repo.query() {
		if wrk.BadgeID == badgeID && !excluded[wrk.ID] {
			return worker.ErrBadgeExists
		}
	}
	return nil
}

func (repo *workerRepository) CreateWorker(_ context.Context, wrk worker.Worker) (worker.Worker, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	wrk.ID = uuid.New().String()
	repo.db.table[wrk.ID] = &wrk
	return wrk, nil
}

func (repo *workerRepository) QueryWorkers(_ context.Context, filter *worker.QueryFilter, ordering []core.DBOrdering) ([]worker.Worker, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	workers := repo.query()

	if filter != nil && filter.Search != "" {
		search := strings.ToLower(filter.Search)
		var filtered []worker.Worker
		for _, w := range workers {
			if strings.Contains(strings.ToLower(w.FirstName), search) ||
				strings.Contains(strings.ToLower(w.LastName), search) ||
				strings.Contains(strings.ToLower(w.BadgeID), search) {
				filtered = append(filtered, w)
			}
		}
		workers = filtered
	}

	// newest first; explicit ordering is a SQL concern, not honored here
	sort.Slice(workers, func(i, j int) bool { return workers[i].CreatedAt.After(workers[j].CreatedAt) })
	return workers, nil
}

func (repo *workerRepository) GetWorker(_ context.Context, id string) (worker.Worker, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if wrk, ok := repo.db.table[id]; ok {
		return *wrk, nil
	}
	return worker.Worker{}, worker.ErrNotFound
}

func (repo *workerRepository) UpdateWorker(_ context.Context, wrk worker.Worker) (worker.Worker, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origWrk, ok := repo.db.table[wrk.ID]
	if !ok {
		return worker.Worker{}, worker.ErrNotFound
	}
	origWrk.FirstName = wrk.FirstName
	origWrk.LastName = wrk.LastName
	origWrk.BadgeID = wrk.BadgeID

	repo.db.table[wrk.ID] = origWrk
	return *origWrk, nil
}

func (repo *workerRepository) DeleteWorkersByID(_ context.Context, ids ...string) (int, error) {
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

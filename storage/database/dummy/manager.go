package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/manager"
)

type managerRepository struct {
	db *managerTable
}

var _ manager.Repository = (*managerRepository)(nil) // interface compliance check

func NewManagerRepository(db *DB) manager.Repository {
	return &managerRepository{db: db.manager}
}

func (repo *managerRepository) query() []manager.Manager {
	mgrs := make([]manager.Manager, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		mgrs = append(mgrs, *m)
	}
	return mgrs
}

func (repo *managerRepository) CheckEmailUniqueness(_ context.Context, email string, excludedManagers ...manager.Manager) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedManagers))
	for _, m := range excludedManagers {
		excluded[m.ID] = true
	}

	for _, mgr := range repo.query() {
		if mgr.Email == email && !excluded[mgr.ID] {
			return manager.ErrEmailExists
		}
	}
	return nil
}

func (repo *managerRepository) CreateManager(_ context.Context, mgr manager.Manager) (manager.Manager, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	mgr.ID = uuid.New().String()
	repo.db.table[mgr.ID] = &mgr
	return mgr, nil
}

func (repo *managerRepository) QueryManagers(_ context.Context, filter *manager.QueryFilter, ordering []core.DBOrdering) ([]manager.Manager, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mgrs := repo.query()

	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			search := strings.ToLower(filter.Search)
			var filtered []manager.Manager
			for _, m := range mgrs {
				if strings.Contains(strings.ToLower(m.Name), search) ||
					strings.Contains(strings.ToLower(m.Email), search) {
					filtered = append(filtered, m)
				}
			}
			mgrs = filtered
		}
		if filter.IsActive != nil {
			var filtered []manager.Manager
			for _, m := range mgrs {
				if m.IsActive != nil && *m.IsActive == *filter.IsActive {
					filtered = append(filtered, m)
				}
			}
			mgrs = filtered
		}
		if !filter.CreatedFrom.IsZero() {
			timeUTC := filter.CreatedFrom.UTC()
			var filtered []manager.Manager
			for _, m := range mgrs {
				if m.CreatedAt.Equal(timeUTC) || m.CreatedAt.After(timeUTC) {
					filtered = append(filtered, m)
				}
			}
			mgrs = filtered
		}
		if !filter.CreatedTo.IsZero() {
			timeUTC := filter.CreatedTo.UTC()
			var filtered []manager.Manager
			for _, m := range mgrs {
				if m.CreatedAt.Before(timeUTC) || m.CreatedAt.Equal(timeUTC) {
					filtered = append(filtered, m)
				}
			}
			mgrs = filtered
		}
	}

	sort.Slice(mgrs, func(i, j int) bool { return mgrs[i].CreatedAt.After(mgrs[j].CreatedAt) })
	return mgrs, nil
}

func (repo *managerRepository) GetManager(_ context.Context, filter manager.GetFilter) (manager.Manager, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if mgr, ok := repo.db.table[filter.ID]; ok {
			return *mgr, nil
		}
		return manager.Manager{}, manager.ErrNotFound
	}
	if filter.Email != "" {
		for _, mgr := range repo.query() {
			if mgr.Email == filter.Email {
				return mgr, nil
			}
		}
	}
	return manager.Manager{}, manager.ErrNotFound
}

func (repo *managerRepository) UpdateManager(_ context.Context, mgr manager.Manager, isActive *bool) (manager.Manager, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origMgr, ok := repo.db.table[mgr.ID]
	if !ok {
		return manager.Manager{}, manager.ErrNotFound
	}
	if mgr.Name != "" {
		origMgr.Name = mgr.Name
	}
	if mgr.Email != "" {
		origMgr.Email = mgr.Email
	}
	if mgr.Roles != nil {
		origMgr.Roles = mgr.Roles
	}
	if mgr.PasswordHash != nil {
		origMgr.PasswordHash = mgr.PasswordHash
	}
	if !mgr.LastLogin.IsZero() {
		origMgr.LastLogin = mgr.LastLogin
	}
	if isActive != nil {
		active := *isActive
		origMgr.IsActive = &active
	}
	if !mgr.UpdatedAt.IsZero() {
		origMgr.UpdatedAt = mgr.UpdatedAt
	}

	repo.db.table[mgr.ID] = origMgr
	return *origMgr, nil
}

func (repo *managerRepository) DeleteManagersByID(_ context.Context, ids ...string) (int, error) {
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

package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/manager"
)

type managerRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (r managerRow) manager() manager.Manager {
	active := r.IsActive
	return manager.Manager{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		IsActive:     &active,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

type managerRepository struct {
	db *sqlx.DB
}

var _ manager.Repository = (*managerRepository)(nil) // interface compliance check

func NewManagerRepository(db *sqlx.DB) *managerRepository {
	return &managerRepository{db: db}
}

func (repo managerRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedManagers ...manager.Manager) error {
	query := `SELECT EXISTS (SELECT 1 FROM managers WHERE email = ?)`
	args := []interface{}{email}
	if len(excludedManagers) > 0 {
		ids := make([]string, 0, len(excludedManagers))
		for _, m := range excludedManagers {
			ids = append(ids, m.ID)
		}
		query = `SELECT EXISTS (SELECT 1 FROM managers WHERE email = ? AND id NOT IN (?))`
		var err error
		query, args, err = sqlx.In(query, email, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return manager.ErrEmailExists
	}
	return nil
}

func (repo managerRepository) CreateManager(ctx context.Context, mgr manager.Manager) (manager.Manager, error) {
	mgr.ID = uuid.New().String()
	isActive := mgr.IsActive == nil || *mgr.IsActive
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO managers (id, name, email, is_active, roles, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		mgr.ID, mgr.Name, mgr.Email, isActive, pq.StringArray(mgr.Roles),
		mgr.PasswordHash, mgr.CreatedAt.UTC(), mgr.UpdatedAt.UTC(),
	)
	if err != nil {
		return manager.Manager{}, errors.Wrap(err, "inserting manager")
	}
	return mgr, nil
}

func (repo managerRepository) QueryManagers(ctx context.Context, filter *manager.QueryFilter, ordering []core.DBOrdering) ([]manager.Manager, error) {
	query := `SELECT * FROM managers`
	var conds []string
	var args []interface{}

	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			conds = append(conds, `(name ILIKE ? OR email ILIKE ?)`)
			val := "%" + filter.Search + "%"
			args = append(args, val, val)
		}
		if filter.IsActive != nil {
			conds = append(conds, `is_active = ?`)
			args = append(args, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, `created_at >= ?`)
			args = append(args, filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, `created_at <= ?`)
			args = append(args, filter.CreatedTo.UTC())
		}
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}

	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += ` ORDER BY ` + strings.Join(orderList, ", ")
	} else {
		query += ` ORDER BY created_at DESC`
	}

	var rows []managerRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying managers")
	}
	mgrs := make([]manager.Manager, 0, len(rows))
	for _, r := range rows {
		mgrs = append(mgrs, r.manager())
	}
	return mgrs, nil
}

func (repo managerRepository) GetManager(ctx context.Context, filter manager.GetFilter) (manager.Manager, error) {
	var (
		query string
		arg   string
	)
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return manager.Manager{}, manager.ErrNotFound
		}
		query, arg = `SELECT * FROM managers WHERE id = $1`, filter.ID
	case filter.Email != "":
		query, arg = `SELECT * FROM managers WHERE email = $1`, filter.Email
	default:
		return manager.Manager{}, manager.ErrNotFound
	}

	var row managerRow
	if err := repo.db.GetContext(ctx, &row, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return manager.Manager{}, manager.ErrNotFound
		}
		return manager.Manager{}, errors.Wrap(err, "finding manager")
	}
	return row.manager(), nil
}

func (repo managerRepository) UpdateManager(ctx context.Context, mgr manager.Manager, isActive *bool) (manager.Manager, error) {
	sets := []string{`updated_at = ?`}
	args := []interface{}{time.Now().UTC()}

	if mgr.Name != "" {
		sets = append(sets, `name = ?`)
		args = append(args, mgr.Name)
	}
	if mgr.Email != "" {
		sets = append(sets, `email = ?`)
		args = append(args, mgr.Email)
	}
	if mgr.Roles != nil {
		sets = append(sets, `roles = ?`)
		args = append(args, pq.StringArray(mgr.Roles))
	}
	if len(mgr.PasswordHash) > 0 {
		sets = append(sets, `password_hash = ?`)
		args = append(args, mgr.PasswordHash)
	}
	if !mgr.LastLogin.IsZero() {
		sets = append(sets, `last_login = ?`)
		args = append(args, mgr.LastLogin.UTC())
	}
	if isActive != nil {
		sets = append(sets, `is_active = ?`)
		args = append(args, *isActive)
	}
	args = append(args, mgr.ID)

	query := `UPDATE managers SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return manager.Manager{}, errors.Wrap(err, "updating manager")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return manager.Manager{}, manager.ErrNotFound
	}
	return repo.GetManager(ctx, manager.GetFilter{ID: mgr.ID})
}

func (repo managerRepository) DeleteManagersByID(ctx context.Context, ids ...string) (int, error) {
	query, args, err := sqlx.In(`DELETE FROM managers WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting managers")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "deleting managers")
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/worker"
)

type workerRow struct {
	ID        string      `db:"id"`
	FirstName null.String `db:"first_name"`
	LastName  null.String `db:"last_name"`
	BadgeID   null.String `db:"badge_id"`
	CreatedAt null.Time   `db:"created_at"`
}

func (r workerRow) worker() worker.Worker {
	return worker.Worker{
		ID:        r.ID,
		FirstName: r.FirstName.String,
		LastName:  r.LastName.String,
		BadgeID:   r.BadgeID.String,
		CreatedAt: r.CreatedAt.Time,
	}
}

type workerRepository struct {
	db *sqlx.DB
}

var _ worker.Repository = (*workerRepository)(nil) // interface compliance check

func NewWorkerRepository(db *sqlx.DB) *workerRepository {
	return &workerRepository{db: db}
}

func (repo workerRepository) CheckBadgeUniqueness(ctx context.Context, badgeID string, excludedWorkers ...worker.Worker) error {
	query := `SELECT EXISTS (SELECT 1 FROM workers WHERE badge_id = ?)`
	args := []interface{}{badgeID}
	if len(excludedWorkers) > 0 {
		ids := make([]string, 0, len(excludedWorkers))
		for _, w := range excludedWorkers {
			ids = append(ids, w.ID)
		}
		query = `SELECT EXISTS (SELECT 1 FROM workers WHERE badge_id = ? AND id NOT IN (?))`
		var err error
		query, args, err = sqlx.In(query, badgeID, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking badge uniqueness")
	}
	if exists {
		return worker.ErrBadgeExists
	}
	return nil
}

func (repo workerRepository) CreateWorker(ctx context.Context, wrk worker.Worker) (worker.Worker, error) {
	wrk.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO workers (id, first_name, last_name, badge_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		wrk.ID, wrk.FirstName, wrk.LastName, wrk.BadgeID, wrk.CreatedAt.UTC(),
	)
	if err != nil {
		return worker.Worker{}, errors.Wrap(err, "inserting worker")
	}
	return wrk, nil
}

func (repo workerRepository) QueryWorkers(ctx context.Context, filter *worker.QueryFilter, ordering []core.DBOrdering) ([]worker.Worker, error) {
	query := `SELECT * FROM workers`
	var args []interface{}

	if filter != nil && filter.Search != "" {
		query += ` WHERE first_name ILIKE ? OR last_name ILIKE ? OR badge_id ILIKE ?`
		val := "%" + filter.Search + "%"
		args = append(args, val, val, val)
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

	var rows []workerRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying workers")
	}
	workers := make([]worker.Worker, 0, len(rows))
	for _, r := range rows {
		workers = append(workers, r.worker())
	}
	return workers, nil
}

func (repo workerRepository) GetWorker(ctx context.Context, id string) (worker.Worker, error) {
	if _, err := uuid.Parse(id); err != nil {
		return worker.Worker{}, worker.ErrNotFound
	}

	var row workerRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM workers WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return worker.Worker{}, worker.ErrNotFound
		}
		return worker.Worker{}, errors.Wrap(err, "finding worker by ID")
	}
	return row.worker(), nil
}

func (repo workerRepository) UpdateWorker(ctx context.Context, wrk worker.Worker) (worker.Worker, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE workers SET first_name = $1, last_name = $2, badge_id = $3 WHERE id = $4`,
		wrk.FirstName, wrk.LastName, wrk.BadgeID, wrk.ID,
	)
	if err != nil {
		return worker.Worker{}, errors.Wrap(err, "updating worker")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return worker.Worker{}, worker.ErrNotFound
	}
	return repo.GetWorker(ctx, wrk.ID)
}

func (repo workerRepository) DeleteWorkersByID(ctx context.Context, ids ...string) (int, error) {
	query, args, err := sqlx.In(`DELETE FROM workers WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting workers")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "deleting workers")
}

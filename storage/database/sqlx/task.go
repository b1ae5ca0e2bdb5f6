package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/task"
)

type taskRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	WorkerID    null.String `db:"worker_id"`
	Month       int         `db:"month"`
	Year        int         `db:"year"`
	Day         null.Int    `db:"day"`
	Completed   bool        `db:"completed"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r taskRow) task() task.Task {
	tsk := task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		Month:       r.Month,
		Year:        r.Year,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
	}
	if r.WorkerID.Valid {
		tsk.WorkerID = &r.WorkerID.String
	}
	if r.Day.Valid {
		tsk.Day = &r.Day.Int
	}
	return tsk
}

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo taskRepository) CreateTask(ctx context.Context, tsk task.Task) (task.Task, error) {
	tsk.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, worker_id, month, year, day, completed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tsk.ID, tsk.Title, null.StringFrom(tsk.Description), null.StringFromPtr(tsk.WorkerID),
		tsk.Month, tsk.Year, null.IntFromPtr(tsk.Day), tsk.Completed, tsk.CreatedAt.UTC(),
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return tsk, nil
}

func (repo taskRepository) QueryTasks(ctx context.Context, filter *task.QueryFilter, ordering []core.DBOrdering) ([]task.Task, error) {
	query := `SELECT * FROM tasks`
	var conds []string
	var args []interface{}

	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			conds = append(conds, `(title ILIKE ? OR description ILIKE ?)`)
			val := "%" + filter.Search + "%"
			args = append(args, val, val)
		}
		if filter.Month != 0 {
			conds = append(conds, `month = ?`)
			args = append(args, filter.Month)
		}
		if filter.Year != 0 {
			conds = append(conds, `year = ?`)
			args = append(args, filter.Year)
		}
		if filter.WorkerID != "" {
			conds = append(conds, `worker_id = ?`)
			args = append(args, filter.WorkerID)
		}
		if filter.Completed != nil {
			conds = append(conds, `completed = ?`)
			args = append(args, *filter.Completed)
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
		query += ` ORDER BY year, month, day NULLS LAST, created_at`
	}

	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task())
	}
	return tasks, nil
}

func (repo taskRepository) GetTask(ctx context.Context, id string) (task.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return task.Task{}, task.ErrNotFound
	}

	var row taskRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM tasks WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "finding task by ID")
	}
	return row.task(), nil
}

func (repo taskRepository) UpdateTask(ctx context.Context, tsk task.Task, completed *bool) (task.Task, error) {
	sets := []string{`title = ?`, `description = ?`, `worker_id = ?`, `month = ?`, `year = ?`, `day = ?`}
	args := []interface{}{
		tsk.Title, null.StringFrom(tsk.Description), null.StringFromPtr(tsk.WorkerID),
		tsk.Month, tsk.Year, null.IntFromPtr(tsk.Day),
	}
	if completed != nil {
		sets = append(sets, `completed = ?`)
		args = append(args, *completed)
	}
	args = append(args, tsk.ID)

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return repo.GetTask(ctx, tsk.ID)
}

func (repo taskRepository) DeleteTasksByID(ctx context.Context, ids ...string) (int, error) {
	query, args, err := sqlx.In(`DELETE FROM tasks WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting tasks")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "deleting tasks")
}

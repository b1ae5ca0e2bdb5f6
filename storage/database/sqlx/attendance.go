package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/operaxhq/operax/core/attendance"
)

type attendanceRow struct {
	ID            int64     `db:"id"`
	BadgeID       string    `db:"badge_id"`
	WorkerName    string    `db:"worker_name"`
	ArrivalTime   time.Time `db:"arrival_time"`
	DepartureTime null.Time `db:"departure_time"`
	Paid          bool      `db:"paid"`
	ArchivedAt    null.Time `db:"archived_at"`
}

func (r attendanceRow) record() attendance.Record {
	rec := attendance.Record{
		ID:          r.ID,
		BadgeID:     r.BadgeID,
		WorkerName:  r.WorkerName,
		ArrivalTime: r.ArrivalTime,
		Paid:        r.Paid,
	}
	if r.DepartureTime.Valid {
		rec.DepartureTime = &r.DepartureTime.Time
	}
	if r.ArchivedAt.Valid {
		rec.ArchivedAt = &r.ArchivedAt.Time
	}
	return rec
}

type paymentRow struct {
	ID         string    `db:"id"`
	WorkerName string    `db:"worker_name"`
	HoursPaid  float64   `db:"hours_paid"`
	FeePaid    float64   `db:"fee_paid"`
	PaidAt     time.Time `db:"paid_at"`
}

func (r paymentRow) payment() attendance.Payment {
	return attendance.Payment{
		ID:         r.ID,
		WorkerName: r.WorkerName,
		HoursPaid:  r.HoursPaid,
		FeePaid:    r.FeePaid,
		PaidAt:     r.PaidAt,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, unpaidOnly bool) ([]attendance.Record, error) {
	query := `SELECT * FROM attendance`
	if unpaidOnly {
		query += ` WHERE paid = false`
	}
	query += ` ORDER BY arrival_time DESC, id DESC`

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}

// SettleWorker flips the worker's unpaid records and writes the ledger entry
// in one transaction. The conditional UPDATE is what makes a concurrent
// double settlement safe: the second transaction matches zero rows and rolls
// back without touching the ledger.
func (repo attendanceRepository) SettleWorker(ctx context.Context, pmt attendance.Payment) (attendance.Payment, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return attendance.Payment{}, errors.Wrap(err, "beginning settlement transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE attendance SET paid = true WHERE btrim(worker_name) = $1 AND paid = false`,
		pmt.WorkerName,
	)
	if err != nil {
		return attendance.Payment{}, errors.Wrap(err, "marking records paid")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return attendance.Payment{}, errors.Wrap(err, "marking records paid")
	}
	if cnt == 0 {
		return attendance.Payment{}, attendance.ErrNothingToSettle
	}

	pmt.ID = uuid.New().String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (id, worker_name, hours_paid, fee_paid, paid_at) VALUES ($1, $2, $3, $4, $5)`,
		pmt.ID, pmt.WorkerName, pmt.HoursPaid, pmt.FeePaid, pmt.PaidAt.UTC(),
	)
	if err != nil {
		return attendance.Payment{}, errors.Wrap(err, "inserting ledger entry")
	}

	if err = tx.Commit(); err != nil {
		return attendance.Payment{}, errors.Wrap(err, "committing settlement")
	}
	return pmt, nil
}

func (repo attendanceRepository) QueryPayments(ctx context.Context, workerName string) ([]attendance.Payment, error) {
	query := `SELECT * FROM payments`
	var args []interface{}
	if workerName != "" {
		query += ` WHERE worker_name = $1`
		args = append(args, workerName)
	}
	query += ` ORDER BY paid_at DESC`

	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	payments := make([]attendance.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, r.payment())
	}
	return payments, nil
}

func (repo attendanceRepository) QueryArchived(ctx context.Context, filter attendance.ArchiveFilter) ([]attendance.Record, error) {
	query := `SELECT * FROM attendance_archive`
	var args []interface{}
	if filter.Search != "" {
		query += ` WHERE badge_id ILIKE $1 OR worker_name ILIKE $1`
		args = append(args, "%"+filter.Search+"%")
	}
	query += ` ORDER BY arrival_time DESC, id DESC`

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying archived records")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}

// ArchiveBefore moves settled records older than cutoff into the archive
// table in one statement, so a record can never exist in both tables.
func (repo attendanceRepository) ArchiveBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := repo.db.ExecContext(ctx,
		`WITH moved AS (
			DELETE FROM attendance
			WHERE paid = true AND arrival_time < $1
			RETURNING id, badge_id, worker_name, arrival_time, departure_time, paid
		)
		INSERT INTO attendance_archive (id, badge_id, worker_name, arrival_time, departure_time, paid, archived_at)
		SELECT id, badge_id, worker_name, arrival_time, departure_time, paid, $2 FROM moved`,
		cutoff.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "archiving records")
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "archiving records")
}

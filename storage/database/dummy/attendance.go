package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/attendance"
)

var recordPKCount int64

type attendanceRepository struct {
	db *attendanceTables
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

// CreateRecord ingests a badge scan. Not part of attendance.Repository:
// scans normally land straight in the database from the RFID integration,
// this exists for seeding and tests.
func (repo *attendanceRepository) CreateRecord(rec attendance.Record) attendance.Record {
	repo.db.Lock()
	defer repo.db.Unlock()

	recordPKCount++
	rec.ID = recordPKCount
	repo.db.records[rec.ID] = &rec
	return rec
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, unpaidOnly bool) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0, len(repo.db.records))
	for _, rec := range repo.db.records {
		if unpaidOnly && rec.Paid {
			continue
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].ArrivalTime.Equal(records[j].ArrivalTime) {
			return records[i].ArrivalTime.After(records[j].ArrivalTime)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

func (repo *attendanceRepository) SettleWorker(_ context.Context, pmt attendance.Payment) (attendance.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	name := core.CleanString(pmt.WorkerName)
	var flipped bool
	for _, rec := range repo.db.records {
		if !rec.Paid && core.CleanString(rec.WorkerName) == name {
			rec.Paid = true
			flipped = true
		}
	}
	if !flipped {
		return attendance.Payment{}, attendance.ErrNothingToSettle
	}

	pmt.ID = uuid.New().String()
	repo.db.payments[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *attendanceRepository) QueryPayments(_ context.Context, workerName string) ([]attendance.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	payments := make([]attendance.Payment, 0, len(repo.db.payments))
	for _, pmt := range repo.db.payments {
		if workerName != "" && pmt.WorkerName != workerName {
			continue
		}
		payments = append(payments, *pmt)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].PaidAt.After(payments[j].PaidAt) })
	return payments, nil
}

func (repo *attendanceRepository) QueryArchived(_ context.Context, filter attendance.ArchiveFilter) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	records := make([]attendance.Record, 0, len(repo.db.archive))
	for _, rec := range repo.db.archive {
		if search != "" &&
			!strings.Contains(strings.ToLower(rec.BadgeID), search) &&
			!strings.Contains(strings.ToLower(rec.WorkerName), search) {
			continue
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].ArrivalTime.Equal(records[j].ArrivalTime) {
			return records[i].ArrivalTime.After(records[j].ArrivalTime)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

func (repo *attendanceRepository) ArchiveBefore(_ context.Context, cutoff time.Time) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	now := time.Now().UTC()
	var cnt int
	for id, rec := range repo.db.records {
		if rec.Paid && rec.ArrivalTime.Before(cutoff) {
			archived := *rec
			archived.ArchivedAt = &now
			repo.db.archive[id] = &archived
			delete(repo.db.records, id)
			cnt++
		}
	}
	return cnt, nil
}

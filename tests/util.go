package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/operaxhq/operax/core/attendance"
	"github.com/operaxhq/operax/core/manager"
	"github.com/operaxhq/operax/core/worker"
	dummydb "github.com/operaxhq/operax/storage/database/dummy"
)

func CreateManager(
	t *testing.T,
	repo manager.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) manager.Manager {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	mgr := manager.Manager{
		Name:      name,
		Email:     email,
		IsActive:  &isActive,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := mgr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateManager() failed: %v", err)
		}
	}
	mgr, err := repo.CreateManager(context.Background(), mgr)
	if err != nil {
		t.Fatalf("CreateManager() failed: %v", err)
	}
	return mgr
}

func CreateWorker(
	t *testing.T,
	repo worker.Repository,
	firstName, lastName, badgeID string,
	createdAt ...time.Time,
) worker.Worker {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	wrk, err := repo.CreateWorker(context.Background(), worker.Worker{
		FirstName: firstName,
		LastName:  lastName,
		BadgeID:   badgeID,
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateWorker() failed: %v", err)
	}
	return wrk
}

// CreateRecord seeds a raw badge scan into a dummy attendance repository.
func CreateRecord(
	t *testing.T,
	repo attendance.Repository,
	badgeID, workerName string,
	arrival time.Time,
	departure *time.Time,
	paid bool,
) attendance.Record {
	t.Helper()

	creator, ok := repo.(interface {
		CreateRecord(rec attendance.Record) attendance.Record
	})
	if !ok {
		t.Fatalf("CreateRecord() repo %T cannot seed records", repo)
	}
	return creator.CreateRecord(attendance.Record{
		BadgeID:       badgeID,
		WorkerName:    workerName,
		ArrivalTime:   arrival,
		DepartureTime: departure,
		Paid:          paid,
	})
}

// Logger routes application logs to the test output.
type Logger struct {
	T *testing.T
}

func NewLogger(t *testing.T) *Logger { return &Logger{T: t} }

func (l *Logger) Enable(bool)                             {}
func (l *Logger) Debug(msg string, args ...interface{})   { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})    { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})    { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{})   { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{})   { l.log("FATAL", msg, args); l.T.FailNow() }
func (l *Logger) log(lvl, msg string, args []interface{}) { l.T.Logf("%s: %s %v", lvl, msg, args) }

// OpenDB returns a fresh in-memory database for tests.
func OpenDB(t *testing.T) *dummydb.DB {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

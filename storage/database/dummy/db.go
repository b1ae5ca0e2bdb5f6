package dummydb

import (
	"sync"

	"github.com/operaxhq/operax/core/attendance"
	"github.com/operaxhq/operax/core/manager"
	"github.com/operaxhq/operax/core/task"
	"github.com/operaxhq/operax/core/worker"
)

type (
	DB struct {
		manager    *managerTable
		worker     *workerTable
		task       *taskTable
		attendance *attendanceTables
	}

	managerTable struct {
		sync.RWMutex
		table map[string]*manager.Manager
	}

	workerTable struct {
		sync.RWMutex
		table map[string]*worker.Worker
	}

	taskTable struct {
		sync.RWMutex
		table map[string]*task.Task
	}

	attendanceTables struct {
		sync.RWMutex
		records  map[int64]*attendance.Record
		archive  map[int64]*attendance.Record
		payments map[string]*attendance.Payment
	}
)

func Open() (*DB, error) {
	db := &DB{
		manager: &managerTable{table: make(map[string]*manager.Manager)},
		worker:  &workerTable{table: make(map[string]*worker.Worker)},
		task:    &taskTable{table: make(map[string]*task.Task)},
		attendance: &attendanceTables{
			records:  make(map[int64]*attendance.Record),
			archive:  make(map[int64]*attendance.Record),
			payments: make(map[string]*attendance.Payment),
		},
	}
	return db, nil
}

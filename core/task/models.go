package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/operaxhq/operax/core"
)

// Task is a scheduled piece of work, optionally assigned to a worker.
// Month/Year place it on the planning calendar; Day is optional.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	WorkerID    *string   `json:"worker_id,omitempty"`
	Month       int       `json:"month"` // 1-12
	Year        int       `json:"year"`
	Day         *int      `json:"day,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	WorkerID    *string `json:"worker_id" validate:"omitempty,uuid4"`
	Month       int     `json:"month" validate:"required,min=1,max=12"`
	Year        int     `json:"year" validate:"required,min=2000"`
	Day         *int    `json:"day" validate:"omitempty,min=1,max=31"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

// UpdateTask defines what information may be provided to modify an existing Task.
type UpdateTask struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	WorkerID    *string `json:"worker_id" validate:"omitempty,uuid4"`
	Month       int     `json:"month" validate:"omitempty,min=1,max=12"`
	Year        int     `json:"year" validate:"omitempty,min=2000"`
	Day         *int    `json:"day" validate:"omitempty,min=1,max=31"`
	Completed   *bool   `json:"completed"`
}

func (ut *UpdateTask) Validate(origTask Task, validate *validator.Validate) error {
	if title := core.CleanString(ut.Title); title != "" {
		ut.Title = title
	} else {
		ut.Title = origTask.Title
	}
	if ut.Description == nil {
		ut.Description = &origTask.Description
	}
	if ut.WorkerID == nil {
		ut.WorkerID = origTask.WorkerID
	}
	if ut.Month == 0 {
		ut.Month = origTask.Month
	}
	if ut.Year == 0 {
		ut.Year = origTask.Year
	}
	if ut.Day == nil {
		ut.Day = origTask.Day
	}
	return validate.Struct(ut)
}

type QueryFilter struct {
	Search    string `query:"search"`
	Month     int    `query:"month"`
	Year      int    `query:"year"`
	WorkerID  string `query:"worker_id"`
	Completed *bool  `query:"completed"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Month == 0 && qf.Year == 0 && qf.WorkerID == "" && qf.Completed == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.WorkerID = core.CleanString(qf.WorkerID)
}

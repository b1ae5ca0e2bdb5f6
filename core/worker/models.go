package worker

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/operaxhq/operax/core"
)

// Worker is a workshop employee carrying an RFID badge.
type Worker struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BadgeID   string    `json:"badge_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (w Worker) FullName() string {
	return core.CleanString(w.FirstName + " " + w.LastName)
}

// NewWorker contains information needed to register a new Worker.
type NewWorker struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	BadgeID   string `json:"badge_id" validate:"required,alphanum_"`
}

func (nw *NewWorker) Validate(validate *validator.Validate, svc *Service) error {
	nw.FirstName = core.CleanString(nw.FirstName)
	nw.LastName = core.CleanString(nw.LastName)
	nw.BadgeID = core.CleanString(nw.BadgeID)

	if err := validate.Struct(nw); err != nil {
		return err
	}
	return svc.checkBadgeUniqueness(nw.BadgeID)
}

// UpdateWorker defines what information may be provided to modify an existing Worker.
type UpdateWorker struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BadgeID   string `json:"badge_id" validate:"omitempty,alphanum_"`
}

func (uw *UpdateWorker) Validate(origWrk Worker, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(uw.FirstName); name != "" {
		uw.FirstName = name
	} else {
		uw.FirstName = origWrk.FirstName
	}
	if name := core.CleanString(uw.LastName); name != "" {
		uw.LastName = name
	} else {
		uw.LastName = origWrk.LastName
	}
	if badge := core.CleanString(uw.BadgeID); badge != "" {
		uw.BadgeID = badge
	} else {
		uw.BadgeID = origWrk.BadgeID
	}

	if err := validate.Struct(uw); err != nil {
		return err
	}
	return svc.checkBadgeUniqueness(uw.BadgeID, origWrk)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

package attendance

import (
	"sort"
	"time"

	"github.com/operaxhq/operax/core"
)

// Status is a worker's derived attendance state. It is never stored;
// it is recomputed from the arrival time on every read.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

type (
	// Record is a single badge scan from the RFID integration.
	// Records are append-only: the scanner creates them, a clock-out sets
	// DepartureTime once, a settlement flips Paid and the archive sweep sets
	// ArchivedAt. Nothing here ever deletes them.
	Record struct {
		ID            int64      `json:"id"`
		BadgeID       string     `json:"badge_id"`
		WorkerName    string     `json:"worker_name"`
		ArrivalTime   time.Time  `json:"arrival_time"`
		DepartureTime *time.Time `json:"departure_time,omitempty"`
		Paid          bool       `json:"paid"`
		ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	}

	// WorkerRemuneration is the per-worker outcome for a reference day,
	// derived from the worker's unpaid records.
	WorkerRemuneration struct {
		WorkerName string  `json:"worker_name"`
		Hours      float64 `json:"hours"`
		Fee        float64 `json:"fee"`
		Status     Status  `json:"status"`
	}

	// Totals is the rollup over a remuneration set.
	// MonthlyFees mirrors Fees: there is no separate monthly window yet.
	Totals struct {
		Hours       float64 `json:"hours"`
		Fees        float64 `json:"fees"`
		MonthlyFees float64 `json:"monthly_fees"`
	}

	// Payment is one immutable settlement ledger entry.
	Payment struct {
		ID         string    `json:"id"`
		WorkerName string    `json:"worker_name"`
		HoursPaid  float64   `json:"hours_paid"`
		FeePaid    float64   `json:"fee_paid"`
		PaidAt     time.Time `json:"paid_at"`
	}

	// Board is what the presence dashboard renders.
	Board struct {
		Remunerations []WorkerRemuneration `json:"remunerations"`
		Totals        Totals               `json:"totals"`
	}

	ArchiveFilter struct {
		// Search matches badge id or worker name, case-insensitive substring.
		Search string `query:"search"`
	}
)

func (f *ArchiveFilter) Clean() {
	f.Search = core.CleanString(f.Search)
}

// StatusOf classifies an arrival time using only its hour/minute of day.
// The shift starts at 08:00; scans before that are treated as invalid early
// scans. 09:00 sharp is still late while 09:01 is absent: keep that boundary.
func StatusOf(arrival time.Time) Status {
	hour, minute := arrival.Hour(), arrival.Minute()

	if hour < 8 {
		return StatusAbsent
	}
	if hour == 8 && minute <= 15 {
		return StatusPresent
	}
	if (hour == 8 && minute > 15) || (hour == 9 && minute == 0) {
		return StatusLate
	}
	if hour > 9 || (hour == 9 && minute > 0) {
		return StatusAbsent
	}
	return StatusAbsent
}

// Remunerate derives per-worker hours and fees from raw records.
//
// Paid and archived records are skipped, as are records whose arrival
// classifies as absent. Remaining records are grouped by (trimmed) worker
// name; the earliest arrival in a group is the authoritative clock-in (ties
// broken by lowest record id), later duplicate scans contribute nothing.
// The effective departure is the recorded one if set; otherwise `now` when
// ref is the current day, else end-of-day of ref. Hours never go negative
// and a fee only accrues for strictly positive hours.
//
// The result is sorted by worker name so repeated runs are comparable.
func Remunerate(records []Record, ref, now time.Time, rate float64) []WorkerRemuneration {
	groups := make(map[string]Record)
	for _, rec := range records {
		if rec.Paid || rec.ArchivedAt != nil {
			continue
		}
		if StatusOf(rec.ArrivalTime) == StatusAbsent {
			continue
		}
		name := core.CleanString(rec.WorkerName)
		if name == "" {
			continue
		}
		earliest, ok := groups[name]
		if !ok || rec.ArrivalTime.Before(earliest.ArrivalTime) ||
			(rec.ArrivalTime.Equal(earliest.ArrivalTime) && rec.ID < earliest.ID) {
			groups[name] = rec
		}
	}

	rems := make([]WorkerRemuneration, 0, len(groups))
	for name, rec := range groups {
		var departure time.Time
		switch {
		case rec.DepartureTime != nil:
			departure = *rec.DepartureTime
		case sameDay(ref, now):
			departure = now
		default:
			y, m, d := ref.Date()
			departure = time.Date(y, m, d, 23, 59, 59, 999000000, ref.Location())
		}

		hours := departure.Sub(rec.ArrivalTime).Hours()
		if hours < 0 {
			hours = 0
		}
		var fee float64
		if hours > 0 {
			fee = hours * rate
		}

		rems = append(rems, WorkerRemuneration{
			WorkerName: name,
			Hours:      hours,
			Fee:        fee,
			Status:     StatusOf(rec.ArrivalTime),
		})
	}

	sort.Slice(rems, func(i, j int) bool { return rems[i].WorkerName < rems[j].WorkerName })
	return rems
}

// Rollup reduces a remuneration set to its totals. Plain commutative sums:
// grouping order never changes the outcome.
func Rollup(rems []WorkerRemuneration) Totals {
	var t Totals
	for _, r := range rems {
		t.Hours += r.Hours
		t.Fees += r.Fee
		t.MonthlyFees += r.Fee
	}
	return t
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

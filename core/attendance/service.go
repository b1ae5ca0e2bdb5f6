package attendance

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/operaxhq/operax/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNothingToSettle = errors.New("no unpaid attendance for this worker")
)

type (
	Repository interface {
		// QueryRecords returns active (non-archived) records, newest arrival first.
		// With unpaidOnly, settled records are excluded.
		QueryRecords(ctx context.Context, unpaidOnly bool) ([]Record, error)
		// SettleWorker atomically marks every unpaid record for pmt.WorkerName as
		// paid and appends pmt to the ledger, in one transaction. When no unpaid
		// record matches it fails with ErrNothingToSettle and the ledger is left
		// untouched.
		SettleWorker(ctx context.Context, pmt Payment) (Payment, error)
		QueryPayments(ctx context.Context, workerName string) ([]Payment, error)
		QueryArchived(ctx context.Context, filter ArchiveFilter) ([]Record, error)
		// ArchiveBefore moves paid records with an arrival older than cutoff to
		// the archive store and returns how many moved.
		ArchiveBefore(ctx context.Context, cutoff time.Time) (int, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// Records returns the raw active scan log, newest first, for the presence table.
func (svc *Service) Records(ctx context.Context) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, false)
}

// Board recomputes the full remuneration view for the given reference day.
func (svc *Service) Board(ctx context.Context, ref time.Time) (Board, error) {
	records, err := svc.repo.QueryRecords(ctx, true)
	if err != nil {
		return Board{}, pkgerrors.Wrap(err, "querying unpaid records")
	}
	rems := Remunerate(records, ref, NowFunc(), svc.conf.Attendance.HourlyRate)
	return Board{Remunerations: rems, Totals: Rollup(rems)}, nil
}

// Settle pays out a worker's outstanding balance: it derives the worker's
// current remuneration, writes the ledger entry and flips the paid flags in
// one repository transaction, then emails a receipt to the workshop address.
func (svc *Service) Settle(ctx context.Context, workerName string, ref time.Time) (Payment, error) {
	workerName = core.CleanString(workerName)

	records, err := svc.repo.QueryRecords(ctx, true)
	if err != nil {
		return Payment{}, pkgerrors.Wrap(err, "querying unpaid records")
	}

	rems := Remunerate(records, ref, NowFunc(), svc.conf.Attendance.HourlyRate)
	var rem *WorkerRemuneration
	for i := range rems {
		if rems[i].WorkerName == workerName {
			rem = &rems[i]
			break
		}
	}
	if rem == nil {
		return Payment{}, ErrNothingToSettle
	}

	pmt, err := svc.repo.SettleWorker(ctx, Payment{
		WorkerName: workerName,
		HoursPaid:  rem.Hours,
		FeePaid:    rem.Fee,
		PaidAt:     NowFunc().UTC(),
	})
	if err != nil {
		if pkgerrors.Cause(err) == ErrNothingToSettle {
			return Payment{}, err
		}
		return Payment{}, pkgerrors.Wrap(err, "settling worker")
	}

	svc.sendReceipt(pmt)
	return pmt, nil
}

func (svc *Service) Payments(ctx context.Context, workerName string) ([]Payment, error) {
	return svc.repo.QueryPayments(ctx, core.CleanString(workerName))
}

func (svc *Service) Archived(ctx context.Context, filter ArchiveFilter) ([]Record, error) {
	filter.Clean()
	return svc.repo.QueryArchived(ctx, filter)
}

func (svc *Service) ArchiveBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return svc.repo.ArchiveBefore(ctx, cutoff)
}

func (svc *Service) sendReceipt(pmt Payment) {
	if svc.mailSvc == nil || svc.conf.WorkshopEmail == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: svc.conf.WorkshopEmail}},
		Subject:      fmt.Sprintf("Payment settled for %s", pmt.WorkerName),
		TemplateName: "settlement-receipt",
		TemplateData: pmt,
	})
}

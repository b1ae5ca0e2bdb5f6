package worker_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/worker"
	dummydb "github.com/operaxhq/operax/storage/database/dummy"
	testutil "github.com/operaxhq/operax/tests"
)

func setup(t *testing.T) (*worker.Service, worker.Repository, *validator.Validate) {
	t.Helper()

	db := testutil.OpenDB(t)
	repo := dummydb.NewWorkerRepository(db)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	return worker.NewService(repo), repo, validate
}

func TestService_Create(t *testing.T) {
	svc, _, validate := setup(t)
	ctx := context.Background()

	data := worker.NewWorker{FirstName: " Ali ", LastName: "Traore", BadgeID: "RF001"}
	if err := data.Validate(validate, svc); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	wrk, err := svc.Create(ctx, data)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if wrk.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if wrk.FirstName != "Ali" {
		t.Errorf("FirstName = %q, want %q", wrk.FirstName, "Ali")
	}
	if wrk.FullName() != "Ali Traore" {
		t.Errorf("FullName() = %q, want %q", wrk.FullName(), "Ali Traore")
	}
}

func TestNewWorker_Validate(t *testing.T) {
	svc, repo, validate := setup(t)

	testutil.CreateWorker(t, repo, "Ali", "Traore", "RF001")

	tests := []struct {
		name    string
		data    worker.NewWorker
		wantErr bool
	}{
		{name: "valid", data: worker.NewWorker{FirstName: "Ben", LastName: "Kone", BadgeID: "RF002"}},
		{name: "missing first name", data: worker.NewWorker{LastName: "Kone", BadgeID: "RF002"}, wantErr: true},
		{name: "badge with symbols", data: worker.NewWorker{FirstName: "Ben", LastName: "Kone", BadgeID: "RF-00#2"}, wantErr: true},
		{name: "duplicate badge", data: worker.NewWorker{FirstName: "Ben", LastName: "Kone", BadgeID: "RF001"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate, svc)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_QueryUpdateDelete(t *testing.T) {
	svc, repo, validate := setup(t)
	ctx := context.Background()

	ali := testutil.CreateWorker(t, repo, "Ali", "Traore", "RF001")
	testutil.CreateWorker(t, repo, "Ben", "Kone", "RF002")

	// search matches names and badge ids
	workers, err := svc.Query(ctx, &worker.QueryFilter{Search: "tra"}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(workers) != 1 || workers[0].ID != ali.ID {
		t.Errorf("Query(search=tra) = %+v, want Ali only", workers)
	}

	// updating keeps unset fields
	data := worker.UpdateWorker{BadgeID: "RF009"}
	if err := data.Validate(ali, validate, svc); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	updated, err := svc.Update(ctx, ali.ID, data)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.BadgeID != "RF009" || updated.FirstName != "Ali" {
		t.Errorf("Update() = %+v, want badge RF009 and first name Ali", updated)
	}

	// reusing the badge of the updated worker is allowed for themselves
	reuse := worker.UpdateWorker{BadgeID: "RF009"}
	if err := reuse.Validate(updated, validate, svc); err != nil {
		t.Errorf("Validate() failed for own badge: %v", err)
	}

	if err := svc.Delete(ctx, ali.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := svc.GetByID(ctx, ali.ID); err != worker.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, worker.ErrNotFound)
	}
}

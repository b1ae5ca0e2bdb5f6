package task_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/task"
	dummydb "github.com/operaxhq/operax/storage/database/dummy"
	testutil "github.com/operaxhq/operax/tests"
)

func setup(t *testing.T) (*task.Service, *validator.Validate) {
	t.Helper()

	db := testutil.OpenDB(t)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	return task.NewService(dummydb.NewTaskRepository(db)), validate
}

func TestNewTask_Validate(t *testing.T) {
	_, validate := setup(t)

	workerID := "4e8d2b7a-9d9f-4c6e-b7a1-0f0e9a1b2c3d"
	badWorkerID := "nope"
	day := 12
	badDay := 32

	tests := []struct {
		name    string
		data    task.NewTask
		wantErr bool
	}{
		{name: "valid", data: task.NewTask{Title: "Sand the frames", Month: 3, Year: 2021}},
		{name: "valid with worker and day", data: task.NewTask{Title: "Paint", Month: 3, Year: 2021, WorkerID: &workerID, Day: &day}},
		{name: "missing title", data: task.NewTask{Month: 3, Year: 2021}, wantErr: true},
		{name: "month out of range", data: task.NewTask{Title: "Paint", Month: 13, Year: 2021}, wantErr: true},
		{name: "year too old", data: task.NewTask{Title: "Paint", Month: 3, Year: 1999}, wantErr: true},
		{name: "day out of range", data: task.NewTask{Title: "Paint", Month: 3, Year: 2021, Day: &badDay}, wantErr: true},
		{name: "bad worker id", data: task.NewTask{Title: "Paint", Month: 3, Year: 2021, WorkerID: &badWorkerID}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_ToggleCompletion(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	tsk, err := svc.Create(ctx, task.NewTask{Title: "Sand the frames", Month: 3, Year: 2021})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if tsk.Completed {
		t.Fatal("new task must not be completed")
	}

	tsk, err = svc.ToggleCompletion(ctx, tsk.ID)
	if err != nil {
		t.Fatalf("ToggleCompletion() failed: %v", err)
	}
	if !tsk.Completed {
		t.Error("expected task to be completed")
	}

	tsk, err = svc.ToggleCompletion(ctx, tsk.ID)
	if err != nil {
		t.Fatalf("ToggleCompletion() failed: %v", err)
	}
	if tsk.Completed {
		t.Error("expected task to be uncompleted again")
	}
}

func TestService_Query(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, task.NewTask{Title: "Sand the frames", Month: 3, Year: 2021})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	varnish, err := svc.Create(ctx, task.NewTask{Title: "Varnish", Month: 4, Year: 2021})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err = svc.ToggleCompletion(ctx, varnish.ID); err != nil {
		t.Fatalf("ToggleCompletion() failed: %v", err)
	}

	bymonth, err := svc.Query(ctx, &task.QueryFilter{Month: 3, Year: 2021}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(bymonth) != 1 || bymonth[0].Title != "Sand the frames" {
		t.Errorf("Query(month=3) = %+v, want the sanding task only", bymonth)
	}

	completed := true
	done, err := svc.Query(ctx, &task.QueryFilter{Completed: &completed}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(done) != 1 || done[0].ID != varnish.ID {
		t.Errorf("Query(completed) = %+v, want the varnish task only", done)
	}

	bysearch, err := svc.Query(ctx, &task.QueryFilter{Search: "varn"}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(bysearch) != 1 || bysearch[0].ID != varnish.ID {
		t.Errorf("Query(search=varn) = %+v, want the varnish task only", bysearch)
	}
}

package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/operaxhq/operax/core/manager"
	"github.com/operaxhq/operax/core/task"
	testutil "github.com/operaxhq/operax/tests"
)

func Test_taskApi_toggleCompletion(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateManager(t, mgrRepo, "Staff", "staff@test.cd", "s3cretpwd", []string{manager.RoleStaff}, true)
	token := getToken(t, staff)

	body := marchallObj(t, task.NewTask{Title: "Sand the frames", Month: 3, Year: 2021})
	req, rec := newAuthRequest(http.MethodPost, "/v1/tasks", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var tsk task.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &tsk); err != nil {
		t.Fatalf("unmarshalling Task failed: %v", err)
	}
	if tsk.Completed {
		t.Fatal("new task must not be completed")
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/tasks/"+tsk.ID+"/toggle", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tsk); err != nil {
		t.Fatalf("unmarshalling Task failed: %v", err)
	}
	if !tsk.Completed {
		t.Error("expected task to be completed")
	}
}

func Test_taskApi_create_invalid(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateManager(t, mgrRepo, "Staff", "staff@test.cd", "s3cretpwd", []string{manager.RoleStaff}, true)
	token := getToken(t, staff)

	tests := []httpTest{
		{name: "missing title", body: marchallObj(t, task.NewTask{Month: 3, Year: 2021})},
		{name: "month out of range", body: marchallObj(t, task.NewTask{Title: "Paint", Month: 13, Year: 2021})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusBadRequest
			req, rec := newAuthRequest(http.MethodPost, "/v1/tasks", token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

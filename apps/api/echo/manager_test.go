package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/operaxhq/operax/core/manager"
	testutil "github.com/operaxhq/operax/tests"
)

func Test_managerApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateManager(t, mgrRepo, "Chief", "chief@test.cd", "s3cretpwd", manager.AllRoles, true)

	tests := []httpTest{
		{
			name:     "empty body",
			body:     marchallObj(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown email",
			body:     marchallObj(t, LoginRequest{Email: "nobody@test.cd", Password: "s3cretpwd"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Email: "chief@test.cd", Password: "wrongpwd"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "success",
			body:     marchallObj(t, LoginRequest{Email: "chief@test.cd", Password: "s3cretpwd"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/managers/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "success" {
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling LoginResponse failed: %v", err)
				}
				if resp.Token == "" {
					t.Error("expected a non-empty token")
				}
			}
		})
	}
}

func Test_managerApi_login_deactivated(t *testing.T) {
	app := setup(t)

	testutil.CreateManager(t, mgrRepo, "Gone", "gone@test.cd", "s3cretpwd", []string{manager.RoleStaff}, false)

	tt := httpTest{
		body:     marchallObj(t, LoginRequest{Email: "gone@test.cd", Password: "s3cretpwd"}),
		wantCode: http.StatusForbidden,
		wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
	}
	req, rec := newRequest(http.MethodPost, "/v1/managers/login", tt.body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_managerApi_query(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateManager(t, mgrRepo, "Chief", "chief@test.cd", "s3cretpwd", manager.AllRoles, true)
	staff := testutil.CreateManager(t, mgrRepo, "Staff", "staff@test.cd", "s3cretpwd", []string{manager.RoleStaff}, true)

	tests := []httpTest{
		{
			name:     "auth required",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "staff cannot list managers",
			token:    getToken(t, staff),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "admin lists all managers",
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []manager.Manager{admin, staff}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/managers", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_managerApi_retrieve(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateManager(t, mgrRepo, "Chief", "chief@test.cd", "s3cretpwd", manager.AllRoles, true)
	staff := testutil.CreateManager(t, mgrRepo, "Staff", "staff@test.cd", "s3cretpwd", []string{manager.RoleStaff}, true)

	tests := []httpTest{
		{
			name:     "managers can retrieve themselves",
			path:     "/v1/managers/" + staff.ID,
			token:    getToken(t, staff),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, staff),
		},
		{
			name:     "staff cannot retrieve others",
			path:     "/v1/managers/" + admin.ID,
			token:    getToken(t, staff),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "admin can retrieve anyone",
			path:     "/v1/managers/" + staff.ID,
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, staff),
		},
		{
			name:     "unknown id",
			path:     "/v1/managers/4e8d2b7a-9d9f-4c6e-b7a1-0f0e9a1b2c3d",
			token:    getToken(t, admin),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_managerApi_refreshToken(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateManager(t, mgrRepo, "Staff", "staff@test.cd", "s3cretpwd", []string{manager.RoleStaff}, true)

	t.Run("auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodPost, "/v1/managers/token-refresh")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("success", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/managers/token-refresh", getToken(t, staff))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; data = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling LoginResponse failed: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a non-empty token")
		}
	})
}

package manager_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/manager"
	emailsvc "github.com/operaxhq/operax/services/email"
	dummydb "github.com/operaxhq/operax/storage/database/dummy"
	testutil "github.com/operaxhq/operax/tests"
)

func setup(t *testing.T) (*manager.Service, manager.Repository, *validator.Validate) {
	t.Helper()

	db := testutil.OpenDB(t)
	repo := dummydb.NewManagerRepository(db)

	conf := &core.Config{
		TestMode:                  true,
		AppName:                   "Operax",
		SecretKey:                 "secret",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
	mailSvc := emailsvc.NewConsoleServiceMock(conf, testutil.NewLogger(t))

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	manager.InitValidators(validate, translator)

	return manager.NewService(repo, mailSvc, conf), repo, validate
}

func TestNewManager_Validate(t *testing.T) {
	svc, repo, validate := setup(t)

	testutil.CreateManager(t, repo, "Chief", "chief@test.cd", "s3cretpwd", manager.AllRoles, true)

	tests := []struct {
		name    string
		data    manager.NewManager
		wantErr bool
	}{
		{name: "valid", data: manager.NewManager{Name: "Staff", Email: "staff@test.cd", Password: "s3cretpwd", PasswordConfirm: "s3cretpwd", Roles: []string{manager.RoleStaff}}},
		{name: "bad email", data: manager.NewManager{Name: "Staff", Email: "nope", Password: "s3cretpwd", PasswordConfirm: "s3cretpwd"}, wantErr: true},
		{name: "short password", data: manager.NewManager{Name: "Staff", Email: "staff@test.cd", Password: "short", PasswordConfirm: "short"}, wantErr: true},
		{name: "password mismatch", data: manager.NewManager{Name: "Staff", Email: "staff@test.cd", Password: "s3cretpwd", PasswordConfirm: "other1234"}, wantErr: true},
		{name: "unknown role", data: manager.NewManager{Name: "Staff", Email: "staff@test.cd", Password: "s3cretpwd", PasswordConfirm: "s3cretpwd", Roles: []string{"boss:"}}, wantErr: true},
		{name: "duplicate email", data: manager.NewManager{Name: "Staff", Email: "chief@test.cd", Password: "s3cretpwd", PasswordConfirm: "s3cretpwd"}, wantErr: true},
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

func TestService_CreateAndAuth(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	mgr, err := svc.Create(ctx, manager.NewManager{
		Name:            "Chief",
		Email:           "chief@test.cd",
		Password:        "s3cretpwd",
		PasswordConfirm: "s3cretpwd",
		Roles:           manager.AllRoles,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if !mgr.IsAdmin() {
		t.Error("expected manager to be admin")
	}
	if err = mgr.CheckPassword("s3cretpwd"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if err = mgr.CheckPassword("wrong"); err == nil {
		t.Error("CheckPassword() expected error for wrong password")
	}

	got, err := svc.GetByEmail(ctx, " Chief@Test.CD ")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if got.ID != mgr.ID {
		t.Errorf("GetByEmail() = %s, want %s", got.ID, mgr.ID)
	}
}

func TestService_ResetPassword(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := context.Background()

	conf := &core.Config{SecretKey: "secret", PasswordResetTimeoutDelta: 3 * 24 * time.Hour}
	mgr := testutil.CreateManager(t, repo, "Chief", "chief@test.cd", "s3cretpwd", manager.AllRoles, true)

	token, err := manager.MakeToken(conf, mgr)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	// an invalid uid is rejected
	err = svc.ResetPassword(ctx, manager.ResetManagerPassword{
		UID: "???", Token: token, Password: "newpwd1234", PasswordConfirm: "newpwd1234",
	})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("ResetPassword() error = %v, want *core.ValidationError", err)
	}

	// note: svc was built with the same secret/delta so the token verifies
	err = svc.ResetPassword(ctx, manager.ResetManagerPassword{
		UID: manager.EncodeUID(mgr), Token: token, Password: "newpwd1234", PasswordConfirm: "newpwd1234",
	})
	if err != nil {
		t.Fatalf("ResetPassword() failed: %v", err)
	}

	refreshed, err := svc.GetByID(ctx, mgr.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if err = refreshed.CheckPassword("newpwd1234"); err != nil {
		t.Errorf("CheckPassword() failed after reset: %v", err)
	}

	// the token is single-use: the password hash changed
	err = svc.ResetPassword(ctx, manager.ResetManagerPassword{
		UID: manager.EncodeUID(mgr), Token: token, Password: "another123", PasswordConfirm: "another123",
	})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("ResetPassword() error = %v, want *core.ValidationError for reused token", err)
	}
}

package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"io/ioutil"
	"log"
	"strconv"
	"testing"

	"github.com/operaxhq/operax/core/manager"
	dummydb "github.com/operaxhq/operax/storage/database/dummy"
	testutil "github.com/operaxhq/operax/tests"
)

var mgrRepo manager.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	logger = log.New(ioutil.Discard, "", 0)

	db := testutil.OpenDB(t)
	mgrRepo = dummydb.NewManagerRepository(db)

	return &commandLine{
		mgrRepo: mgrRepo,
		attRepo: dummydb.NewAttendanceRepository(db),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "payments", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	mgr := testutil.CreateManager(t, mgrRepo, "Chief", "chief@test.cd", "mdr", manager.AllRoles, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "manager not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: manager.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", mgr.Email}, extra: extra{pwd: "lol"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedMgr, err := mgrRepo.GetManager(context.Background(), manager.GetFilter{ID: mgr.ID})
				if err != nil {
					t.Fatalf("GetManager() failed, %v", err)
				}
				if bytes.Equal(refreshedMgr.PasswordHash, mgr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addManager(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cretpwd"), nil }

	if err := cli.run([]string{"admin", "addmanager", "-name", "Chief", "-email", "chief@test.cd", "-admin"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	mgr, err := mgrRepo.GetManager(context.Background(), manager.GetFilter{Email: "chief@test.cd"})
	if err != nil {
		t.Fatalf("GetManager() failed: %v", err)
	}
	if !mgr.IsAdmin() {
		t.Error("expected an admin account")
	}
	if err = mgr.CheckPassword("s3cretpwd"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}

	// running again updates the existing account instead of duplicating it
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("newpwd1234"), nil }
	if err := cli.run([]string{"admin", "addmanager", "-name", "Chief", "-email", "chief@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	updated, err := mgrRepo.GetManager(context.Background(), manager.GetFilter{Email: "chief@test.cd"})
	if err != nil {
		t.Fatalf("GetManager() failed: %v", err)
	}
	if updated.ID != mgr.ID {
		t.Errorf("expected the same account, got %s and %s", updated.ID, mgr.ID)
	}
	if err = updated.CheckPassword("newpwd1234"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
}

func Test_commandLine_archive(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no cutoff", args: []string{"archive"}, wantErr: errHelp},
		{name: "bad cutoff", args: []string{"archive", "-before", "15-03-2021"}, wantErrStr: `invalid -before date "15-03-2021" (want ` + archiveDateLayout + `)`},
		{name: "valid cutoff", args: []string{"archive", "-before", "2021-04-01"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

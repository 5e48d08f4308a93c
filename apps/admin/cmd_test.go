package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"log"
	"strconv"
	"testing"

	"github.com/trezcool/njia/core/user"
	dummydb "github.com/trezcool/njia/storage/database/dummy"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	logger = log.New(io.Discard, "", 0)

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)

	return &commandLine{usrRepo: usrRepo}
}

func createUser(t *testing.T, name, uname, email, pwd string, isActive bool) user.User {
	t.Helper()

	usr := user.User{
		Name:     name,
		Username: uname,
		Email:    email,
		Roles:    user.StudentRoles,
	}
	usr.SetActive(isActive)
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	return usr
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
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
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

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cr3t"), nil }

	t.Run("creates a new student", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-username", "awe", "-email", "awe@test.cd"}); err != nil {
			t.Fatalf("cli.run() failed, %v", err)
		}
		usr, err := usrRepo.GetUserByUsername(context.Background(), "awe")
		if err != nil {
			t.Fatalf("GetUserByUsername() failed, %v", err)
		}
		if usr.IsAdmin() {
			t.Error("new user should not be admin")
		}
		if usr.IsActive == nil || !*usr.IsActive {
			t.Error("new user should be active")
		}
		if err := usr.CheckPassword("s3cr3t"); err != nil {
			t.Error("failed to set password")
		}
	})

	t.Run("promotes an existing user to admin", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-username", "awe", "-email", "awe@test.cd", "-admin"}); err != nil {
			t.Fatalf("cli.run() failed, %v", err)
		}
		usr, err := usrRepo.GetUserByUsername(context.Background(), "awe")
		if err != nil {
			t.Fatalf("GetUserByUsername() failed, %v", err)
		}
		if !usr.IsAdmin() {
			t.Error("user should be admin")
		}
	})

	t.Run("missing flags", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-username", "awe"}); err != errHelp {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errHelp)
		}
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "User", "awe", "awe@test.cd", "mdr", true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
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
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

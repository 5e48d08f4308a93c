package main

import (
	"database/sql"
	"flag"
	"fmt"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/njia/core/user"
)

// readPasswordFunc reads a password from the terminal; replaceable in tests.
var readPasswordFunc = term.ReadPassword

var errHelp = errors.New("provided help flag")

type commandLine struct {
	db      *sql.DB
	usrRepo user.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println(`Usage:
	migrate: runs database migrations. Usage,
		migrate <command>

		Commands:
		up                   Migrate the DB to the most recent version available
		up-by-one            Migrate the DB up by 1
		up-to VERSION        Migrate the DB to a specific VERSION
		down                 Roll back the version by 1
		down-to VERSION      Roll back to a specific VERSION
		redo                 Re-run the latest migration
		reset                Roll back all migrations
		status               Dump the migration status for the current DB
		version              Print the current version of the database
	adduser: creates a new user account. Usage,
		adduser -username <username> -email <email> [-admin]
	resetpassword: resets a user's password. Usage,
		resetpassword -username <username>`)
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username")
	addUserEmail := addUserCmd.String("email", "", "The user's email address")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant the user admin privileges")

	resetPwdCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPwdUname := resetPwdCmd.String("username", "", "The user's username or email address")

	switch args[1] {
	case "migrate":
		if err := migrateCmd.Parse(args[2:]); err != nil {
			return err
		}
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
	case "resetpassword":
		if err := resetPwdCmd.Parse(args[2:]); err != nil {
			return err
		}
	default:
		cli.printUsage()
		return errHelp
	}

	switch {
	case migrateCmd.Parsed():
		cmdArgs := migrateCmd.Args()
		if len(cmdArgs) < 1 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(cmdArgs)

	case addUserCmd.Parsed():
		if *addUserUname == "" || *addUserEmail == "" {
			cli.printUsage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.addUser(*addUserUname, *addUserEmail, pwd, *addUserAdmin)

	case resetPwdCmd.Parsed():
		if *resetPwdUname == "" {
			cli.printUsage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPwdUname, pwd)
	}
	return nil
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Password: ")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if p := strings.TrimSpace(string(pwd)); p != "" {
		return p, nil
	}
	cli.printUsage()
	return "", errHelp
}

package main

import (
	"database/sql"
	"io/fs"

	"github.com/trezcool/goose"

	appfs "github.com/trezcool/njia/fs"
)

// gooseRunFunc runs migrations; replaceable in tests.
var gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
	return goose.RunFS(command, db, fsys, dir, args...)
}

func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(args[0], cli.db, appfs.FS, "migrations", args[1:]...)
}

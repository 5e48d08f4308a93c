package main

import (
	"context"
	"strings"

	"github.com/trezcool/njia/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()

	uname = strings.ToLower(core.CleanString(uname))

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err = cli.usrRepo.UpdateUser(ctx, usr, nil); err != nil {
		return err
	}
	logger.Printf("password reset for user %q\n", usr.Username)
	return nil
}

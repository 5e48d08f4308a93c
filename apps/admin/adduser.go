package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/njia/core"
	"github.com/trezcool/njia/core/user"
)

func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()

	uname = strings.ToLower(core.CleanString(uname))
	email = strings.ToLower(core.CleanString(email))

	roles := user.StudentRoles
	if isAdmin {
		roles = user.AllRoles
	}

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	switch errors.Cause(err) {
	case nil:
	case user.ErrNotFound:
		usr = user.User{
			Username: uname,
			Email:    email,
			Roles:    roles,
		}
		usr.SetActive(true)
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		if _, err = cli.usrRepo.CreateUser(ctx, usr); err != nil {
			return err
		}
		logger.Printf("user %q created\n", uname)
		return nil
	default:
		return err
	}

	usr.Email = email
	usr.Roles = roles
	usr.SetActive(true)
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err = cli.usrRepo.UpdateUser(ctx, usr, usr.IsActive); err != nil {
		return err
	}
	logger.Printf("user %q updated\n", uname)
	return nil
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mjuric/labtrack/core"
	"github.com/mjuric/labtrack/core/user"
)

// addUser creates a user.User with the given role.
func (cli *commandLine) addUser(uname, name, surname, role, pwd string) error {
	ctx := context.Background()

	role = strings.ToUpper(core.CleanString(role))
	if !user.HasAnyRole(role, user.AllRoles...) {
		return fmt.Errorf("invalid role %q; must be one of: %s", role, strings.Join(user.AllRoles, ", "))
	}

	usr := user.User{
		Username: core.CleanString(uname, true /* lower */),
		Name:     core.CleanString(name),
		Surname:  core.CleanString(surname),
		Role:     role,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(ctx, usr)
	return err
}

// resetPassword replaces the stored password hash for the given username.
func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()

	usr, err := cli.usrRepo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	return cli.usrRepo.UpdateUserPassword(ctx, usr.ID, usr.PasswordHash)
}

package main

import (
	"context"
	"time"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/manager"
)

// addManager updates or creates a manager account.
func (cli *commandLine) addManager(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	mgr, err := cli.mgrRepo.GetManager(ctx, manager.GetFilter{Email: email})
	if err != nil {
		if err != manager.ErrNotFound {
			return err
		}
		mgr = manager.Manager{
			Name:      name,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
	}
	mgr.Name = name
	mgr.Roles = []string{manager.RoleStaff}
	if isAdmin {
		mgr.Roles = manager.AllRoles
	}
	if err := mgr.SetPassword(pwd); err != nil {
		return err
	}
	mgr.UpdatedAt = time.Now().UTC()

	active := true
	if mgr.ID == "" {
		mgr.IsActive = &active
		_, err = cli.mgrRepo.CreateManager(ctx, mgr)
		return err
	}
	_, err = cli.mgrRepo.UpdateManager(ctx, mgr, &active)
	return err
}

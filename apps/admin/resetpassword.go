package main

import (
	"context"
	"time"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/core/manager"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	mgr, err := cli.mgrRepo.GetManager(ctx, manager.GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if err := mgr.SetPassword(pwd); err != nil {
		return err
	}
	mgr.UpdatedAt = time.Now().UTC()
	if _, err := cli.mgrRepo.UpdateManager(ctx, mgr, nil); err != nil {
		return err
	}
	return nil
}

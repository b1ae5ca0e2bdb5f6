package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/operaxhq/operax/core/attendance"
	"github.com/operaxhq/operax/core/manager"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

const archiveDateLayout = "2006-01-02"

type commandLine struct {
	db      *sql.DB
	mgrRepo manager.Repository
	attRepo attendance.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run database migrations (up, down, status, ...)")
	fmt.Println("  addmanager -name NAME -email EMAIL [-admin] - update or create a manager account")
	fmt.Println("  resetpassword -email EMAIL - reset a manager's password")
	fmt.Println("  archive -before DATE - move settled attendance older than DATE (" + archiveDateLayout + ") to the archive")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addManagerCmd := flag.NewFlagSet("addmanager", flag.ExitOnError)
	addManagerName := addManagerCmd.String("name", "", "The manager's full name.")
	addManagerEmail := addManagerCmd.String("email", "", "The manager's email. The password will be prompted next.")
	addManagerAdmin := addManagerCmd.Bool("admin", false, "Grant all roles.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The manager's email. The password will be prompted next.")

	archiveCmd := flag.NewFlagSet("archive", flag.ExitOnError)
	archiveBefore := archiveCmd.String("before", "", "Cutoff date ("+archiveDateLayout+"); settled records with an older arrival are archived.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addmanager":
		if err := addManagerCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addManagerName == "" || *addManagerEmail == "" {
			addManagerCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addManagerCmd.Usage()
			return errHelp
		}
		return cli.addManager(*addManagerName, *addManagerEmail, pwd, *addManagerAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "archive":
		if err := archiveCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *archiveBefore == "" {
			archiveCmd.Usage()
			return errHelp
		}
		cutoff, err := time.Parse(archiveDateLayout, *archiveBefore)
		if err != nil {
			return fmt.Errorf("invalid -before date %q (want %s)", *archiveBefore, archiveDateLayout)
		}
		return cli.archive(cutoff)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

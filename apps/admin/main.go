package main

import (
	"log"
	"os"

	"github.com/operaxhq/operax/core"
	"github.com/operaxhq/operax/storage/database"
	sqlxrepos "github.com/operaxhq/operax/storage/database/sqlx"

	"github.com/jmoiron/sqlx"
)

var logger *log.Logger // todo: logger service

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	dbx := sqlx.NewDb(db, conf.Database.Engine)

	// start CLI
	cli := commandLine{
		db:      db,
		mgrRepo: sqlxrepos.NewManagerRepository(dbx),
		attRepo: sqlxrepos.NewAttendanceRepository(dbx),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/yungbote/cohort-backend/internal/app"
)

func main() {
	log, err := app.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Error("Loading config failed", "error", err)
		os.Exit(1)
	}

	cli := &commandLine{out: os.Stdout, cfg: cfg, log: log}
	cli.connect = func() error {
		dbService, err := app.OpenDB(log, cfg)
		if err != nil {
			return err
		}
		cli.closeDB = dbService.Close
		_, cli.svcs = app.BuildServices(dbService.DB(), log, nil)
		return nil
	}
	defer cli.close()

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		cli.close()
		os.Exit(1)
	}
}

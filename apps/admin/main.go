package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/academia/apps"
	"github.com/trezcool/academia/core"
)

func main() {
	conf := core.NewConfig()

	c, err := apps.NewContainer(context.Background(), conf, apps.Options{LogPrefix: "ADMIN : "})
	if err != nil {
		log.Fatalf("setting up dependencies: %+v", err)
	}

	// start CLI
	cli := commandLine{
		conf:       conf,
		db:         c.SQLDB,
		studentSvc: c.StudentSvc,
		out:        os.Stdout,
	}
	// TODO: wait for the report emails of promote & checkinactivity before exiting
	err = cli.run(os.Args)
	if err != nil && err != errHelp {
		c.Logger.Error(fmt.Sprintf("error: %v", err), err)
	}
	_ = c.Close()
	if err != nil {
		os.Exit(1)
	}
}

package main

import (
	"github.com/trezcool/academia/apps"
	"github.com/trezcool/academia/storage/database"
)

var gooseRunFunc = database.Migrate // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return apps.NewArgumentError("migrations require a SQL database engine")
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}

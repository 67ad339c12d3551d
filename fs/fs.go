// Package appfs embeds the files shipped with the binaries.
package appfs

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql templates/email/*
var FS embed.FS

const MigrationsDir = "migrations"

// EmailTemplates returns the email templates directory.
func EmailTemplates() fs.FS {
	sub, err := fs.Sub(FS, "templates/email")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}

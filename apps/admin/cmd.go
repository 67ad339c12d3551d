package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/academia/apps"
	"github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf       *core.Config
	db         *sqlx.DB // nil with the dummy engine
	studentSvc student.ServiceInterface
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]  - run a goose command (up, down, status, ...)")
	_, _ = fmt.Fprintln(cli.out, "  promote [-year YEAR]    - promote students for the academic year (current year by default)")
	_, _ = fmt.Fprintln(cli.out, "  checkinactivity         - flag students without recent attendance as inactive")
	_, _ = fmt.Fprintln(cli.out, "  token -subject ID -roles ROLES [-username USERNAME] [-email EMAIL] - generate an API token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	promoteCmd := flag.NewFlagSet("promote", flag.ContinueOnError)
	promoteCmd.SetOutput(cli.out)
	promoteYear := promoteCmd.String("year", "", "The academic year to promote from, e.g. 2024 or 2024-2025.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenSubject := tokenCmd.String("subject", "", "The ID of the token's owner.")
	tokenRoles := tokenCmd.String("roles", "", "Comma separated roles, e.g. admin:principal,teacher.")
	tokenUsername := tokenCmd.String("username", "", "The username of the token's owner.")
	tokenEmail := tokenCmd.String("email", "", "The email of the token's owner.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "promote":
		if err := promoteCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.promote(ctx, student.AcademicYear(core.CleanString(*promoteYear)))
	case "checkinactivity":
		return cli.checkInactivity(ctx)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenSubject == "" || *tokenRoles == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenSubject, *tokenUsername, *tokenEmail, splitRoles(*tokenRoles))
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promote(ctx context.Context, year student.AcademicYear) error {
	res, err := cli.studentSvc.Promote(ctx, year)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "promotion %s (%s): %d promoted, %d repeating, %d skipped, %d failed\n",
		res.RunID, res.Year, res.Promoted, res.Repeated, res.Skipped, res.Failed)
	return nil
}

func (cli *commandLine) checkInactivity(ctx context.Context) error {
	res, err := cli.studentSvc.CheckInactivity(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "inactivity check %s: %d inactive, %d reactivated, %d failed\n",
		res.RunID, res.Inactive, res.Activated, res.Failed)
	return nil
}

func (cli *commandLine) token(subject, username, email string, roles []string) error {
	if len(roles) == 0 {
		return apps.NewArgumentError("at least one role is required")
	}
	token, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, subject, username, email, roles...))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, token)
	return nil
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = core.CleanString(r, true); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

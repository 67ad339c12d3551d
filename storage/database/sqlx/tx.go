// Package sqlxrepos implements the repositories on a postgres database with sqlx.
package sqlxrepos

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

// inTx runs fn in a transaction, committed if fn succeeds and rolled back otherwise.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx core.DBExecutor) error) (err error) {
	var tx *sqlx.Tx
	tx, err = db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	var txr core.DBTransactor = tx

	defer func() {
		if p := recover(); p != nil {
			_ = txr.Rollback()
			panic(p)
		}
		if err != nil {
			_ = txr.Rollback()
			return
		}
		err = errors.Wrap(txr.Commit(), "committing transaction")
	}()

	return fn(tx)
}

// where accumulates the conditions & args of a query.
type where struct {
	conds []string
	args  []interface{}
}

// add appends a condition whose single "?" placeholder is bound to arg.
func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders orderings with the allowed columns only, falling back to defaults.
func orderBy(orderings []core.DBOrdering, columns map[string]string, defaults ...string) string {
	clauses := make([]string, 0, len(orderings)+len(defaults))
	for _, ord := range orderings {
		if col, ok := columns[ord.Field]; ok {
			clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	clauses = append(clauses, defaults...)
	if len(clauses) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

func exists(ctx context.Context, db *sqlx.DB, table string, id int) (bool, error) {
	var found bool
	err := db.GetContext(ctx, &found, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id)
	return found, err
}

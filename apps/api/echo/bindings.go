package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var orderingParam = "ordering"

// bind binds the request into i. Malformed input is a validation error.
func bind(ctx echo.Context, i interface{}, name string) error {
	if err := ctx.Bind(i); err != nil {
		if herr, ok := err.(*echo.HTTPError); ok && herr.Code == http.StatusBadRequest {
			return errors.Wrap(errInvalidBody, "binding to "+name)
		}
		return errors.Wrap(err, "binding to "+name)
	}
	return nil
}

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses the comma separated "ordering" query param ("-" prefix for descending).
// Fields outside of allowed are rejected.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) error {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return nil
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		if !contains(allowed, field) {
			return core.NewValidationError(
				errors.New("invalid ordering"),
				core.FieldError{Field: orderingParam, Error: "cannot order by " + field},
			)
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

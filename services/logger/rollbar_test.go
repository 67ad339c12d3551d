package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/academia/core"
)

func newLogger(out *bytes.Buffer) *RollbarLogger {
	l := NewRollbarLogger(log.New(out, "TEST : ", 0), &core.Config{Env: "TEST"})
	l.Enable(false)
	return l
}

func TestRollbarLogger_print(t *testing.T) {
	var out bytes.Buffer
	l := newLogger(&out)

	l.Error("promotion failed", errors.New("deadlock"), core.Person{ID: "7", Username: "admin"})

	assert.Contains(t, out.String(), "ERROR: promotion failed")
	assert.Contains(t, out.String(), "deadlock")
	assert.NotContains(t, out.String(), "admin")
}

func TestRollbarLogger_prepare(t *testing.T) {
	var out bytes.Buffer
	l := newLogger(&out)
	extra := map[string]interface{}{"run_id": "abc"}

	args := l.prepare("msg", []interface{}{core.Person{ID: "1"}, extra, core.Person{ID: "2"}})
	assert.Equal(t, []interface{}{"msg", extra}, args)
}

func TestRollbarLogger_Fatal(t *testing.T) {
	var out bytes.Buffer
	l := newLogger(&out)

	var code int
	exitFunc = func(c int) { code = c }
	defer func() { exitFunc = osExit }()

	l.Fatal("cannot start")
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL: cannot start")
}

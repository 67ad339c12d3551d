package apps

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/attendance"
	"github.com/trezcool/academia/core/result"
	"github.com/trezcool/academia/core/student"
	appfs "github.com/trezcool/academia/fs"
	"github.com/trezcool/academia/services/email"
	"github.com/trezcool/academia/services/logger"
	"github.com/trezcool/academia/services/metrics"
	"github.com/trezcool/academia/storage/database"
	"github.com/trezcool/academia/storage/database/dummy"
	"github.com/trezcool/academia/storage/database/sqlx"
)

type (
	Pinger interface {
		PingContext(ctx context.Context) error
	}

	Options struct {
		LogPrefix string // e.g. "API : "
		Migrate   bool   // apply pending migrations on start up
	}

	// Container holds the dependencies shared by the apps.
	Container struct {
		Conf     *core.Config
		Logger   core.Logger
		DBLogger core.Logger

		SQLDB   *sqlx.DB    // nil with the dummy engine
		DummyDB *dummydb.DB // nil with a SQL engine

		MailSvc       core.EmailService
		Metrics       *metricsvc.Metrics
		AttendanceSvc *attendance.Service
		ResultSvc     *result.Service
		StudentSvc    *student.Service

		Validate   *validator.Validate
		Translator ut.Translator
	}
)

func newLogger(conf *core.Config, prefix string) *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	return logger
}

// NewContainer sets up the database, the services and the validators.
func NewContainer(ctx context.Context, conf *core.Config, opts Options) (*Container, error) {
	c := &Container{
		Conf:     conf,
		Logger:   newLogger(conf, opts.LogPrefix),
		DBLogger: newLogger(conf, "DB : "),
	}

	// set up DB & repos
	var (
		attendanceRepo attendance.Repository
		resultRepo     result.Repository
		studentRepo    student.Repository
	)
	if conf.IsDummyDB() {
		db, err := dummydb.Open()
		if err != nil {
			return nil, errors.Wrap(err, "opening dummy database")
		}
		c.DummyDB = db
		attendanceRepo = dummydb.NewAttendanceRepository(db)
		resultRepo = dummydb.NewResultRepository(db)
		studentRepo = dummydb.NewStudentRepository(db)
	} else {
		db, err := setUpDB(ctx, conf, opts.Migrate)
		if err != nil {
			return nil, errors.Wrap(err, "setting up database")
		}
		c.SQLDB = db
		attendanceRepo = sqlxrepos.NewAttendanceRepository(db)
		resultRepo = sqlxrepos.NewResultRepository(db)
		studentRepo = sqlxrepos.NewStudentRepository(db)
	}

	// set up services
	templates, err := core.ParseEmailTemplates(appfs.EmailTemplates(), conf.AppName, conf.TestMode)
	if err != nil {
		return nil, errors.Wrap(err, "parsing email templates")
	}
	if conf.Debug || conf.SendgridApiKey == "" {
		c.MailSvc = emailsvc.NewConsoleService(conf, templates, c.Logger, log.New(os.Stdout, "", 0))
	} else {
		c.MailSvc = emailsvc.NewSendgridService(conf, templates, c.Logger)
	}

	if c.Metrics, err = metricsvc.New(prometheus.DefaultRegisterer); err != nil {
		return nil, errors.Wrap(err, "registering metrics")
	}

	c.AttendanceSvc = attendance.NewService(attendanceRepo)
	c.ResultSvc = result.NewService(resultRepo)
	c.StudentSvc = student.NewService(studentRepo, c.ResultSvc, c.MailSvc, c.Metrics, c.Logger, conf)

	c.Validate = validator.New()
	c.Translator = core.NewTranslator()
	core.InitValidators(c.Validate, c.Translator)
	attendance.InitValidators(c.Validate, c.Translator)

	return c, nil
}

// DB returns the database in use.
func (c *Container) DB() Pinger {
	if c.SQLDB != nil {
		return c.SQLDB
	}
	return c.DummyDB
}

func (c *Container) Close() error {
	if c.SQLDB != nil {
		if err := c.SQLDB.Close(); err != nil {
			c.DBLogger.Error(fmt.Sprintf("closing database: %v", err), err)
			return err
		}
	}
	if c.DummyDB != nil {
		return c.DummyDB.Close()
	}
	return nil
}

func setUpDB(ctx context.Context, conf *core.Config, migrate bool) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err = database.Migrate(db, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

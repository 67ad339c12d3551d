package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/trezcool/academia/apps"
	"github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/services/scheduler"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	c, err := apps.NewContainer(context.Background(), conf, apps.Options{LogPrefix: "API : ", Migrate: true})
	if err != nil {
		log.Fatalf("setting up dependencies: %+v", err)
	}
	logger := c.Logger
	defer func() {
		if err = c.Close(); err != nil {
			c.DBLogger.Fatal("Failed to close", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Scheduler

	sched := schedulersvc.New(logger)
	if conf.Inactivity.Schedule != "" {
		if err = sched.ScheduleInactivityCheck(conf.Inactivity.Schedule, c.StudentSvc); err != nil {
			logger.Fatal(fmt.Sprintf("scheduler error: %v", err), err)
		}
		logger.Info(fmt.Sprintf("inactivity check scheduled: %q", conf.Inactivity.Schedule))
	}
	sched.Start()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			DB:            c.DB(),
			Metrics:       c.Metrics,
			AttendanceSvc: c.AttendanceSvc,
			ResultSvc:     c.ResultSvc,
			StudentSvc:    c.StudentSvc,
			Validate:      c.Validate,
			Translator:    c.Translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests and jobs a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = sched.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop scheduler gracefully: %v", err), err)
		}

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

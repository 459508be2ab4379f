package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/noah-isme/zotreg/internal/audit"
	"github.com/noah-isme/zotreg/internal/metrics"
	"github.com/noah-isme/zotreg/internal/ops"
	"github.com/noah-isme/zotreg/internal/registry"
	"github.com/noah-isme/zotreg/internal/server"
	"github.com/noah-isme/zotreg/internal/service"
	"github.com/noah-isme/zotreg/pkg/config"
	"github.com/noah-isme/zotreg/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	port := pflag.IntP("port", "p", cfg.Port, "TCP port to listen on")
	courseFile := pflag.StringP("courses", "c", cfg.CourseFile, "course definition file")
	auditFile := pflag.StringP("audit-log", "a", cfg.AuditLogFile, "audit log output file")
	pflag.Parse()
	cfg.Port = *port
	cfg.CourseFile = *courseFile
	cfg.AuditLogFile = *auditFile

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	defs, err := registry.LoadCourseFile(cfg.CourseFile)
	if err != nil {
		logr.Sugar().Fatalw("course file unusable", "path", cfg.CourseFile, "error", err)
	}

	auditLog, err := audit.Open(cfg.AuditLogFile)
	if err != nil {
		logr.Sugar().Fatalw("audit log unusable", "path", cfg.AuditLogFile, "error", err)
	}
	defer auditLog.Close() //nolint:errcheck

	courses := registry.NewCourseTable(defs)
	users := registry.NewUserDirectory()
	stats := metrics.NewService()
	registrar := service.NewRegistrar(courses, users, auditLog, stats, logr)

	srv := server.New(cfg, registrar, users, courses, stats, auditLog, logr)

	var sidecar *ops.Server
	if cfg.Ops.Enabled {
		sidecar = ops.New(cfg, stats, logr)
		go func() {
			if err := sidecar.Run(); err != nil {
				logr.Sugar().Errorw("ops sidecar failed", "error", err)
			}
		}()
	}

	fmt.Printf("Server initialized with %d courses.\n", courses.Defined())
	fmt.Printf("Currently listening on port %d.\n", cfg.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	srv.Shutdown(os.Stdout, os.Stderr)
	if sidecar != nil {
		sidecar.Stop()
	}
}

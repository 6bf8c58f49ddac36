package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/TretaGroup/tretaweb/internal"
	"github.com/TretaGroup/tretaweb/internal/auth"
	"github.com/TretaGroup/tretaweb/internal/config"
	"github.com/TretaGroup/tretaweb/internal/logging"
	"github.com/TretaGroup/tretaweb/pkg"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "main-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	sessionSecret, secretSource := auth.ResolveSecret(os.Getenv)
	if secretSource == auth.SecretInsecureDefault && cfg.Environment == "production" {
		log.Errorf("running in production with the insecure default session secret")
	}

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	if otelServiceName := os.Getenv("OTEL_SERVICE_NAME"); otelServiceName == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	// check if cfg.ContentRootPath exists and is a directory, and create if not
	contentRootExists, err := pkg.PathExists(cfg.ContentRootPath, true)
	if err != nil {
		log.Fatalf("check content root dir: %s", err)
	}
	if !contentRootExists {
		log.Warnf("content root dir [%s] not found, creating it", cfg.ContentRootPath)
		if err := os.MkdirAll(cfg.ContentRootPath, os.ModePerm); err != nil {
			log.Fatalf("create content root dir: %s", err)
		}
	} else {
		log.Printf("content root dir: %s", cfg.ContentRootPath)
	}

	if exists, err := pkg.PathExists(cfg.UsersFilePath, false); err != nil {
		log.Fatalf("check users file: %s", err)
	} else if !exists {
		log.Warnf("users file not found at [%s], all logins will fail", cfg.UsersFilePath)
	}

	server, err := internal.NewServer(internal.NewServerParams{
		Config:                  cfg,
		SessionSecret:           sessionSecret,
		VersionInfo:             versionInfo,
		HoneycombTracingEnabled: honeycombEnabled,
	})
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(ctx, cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	// go to sleep 🥱
	server.GracefulShutdown()
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return pkg.BytesToString(stdout), nil
}

// Command dataexec serves an interactive dataset session as MCP tools.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonwraymond/dataexec/config"
	"github.com/jonwraymond/dataexec/exec"
	"github.com/jonwraymond/dataexec/logging"
	"github.com/jonwraymond/dataexec/mcpserver"
	"github.com/jonwraymond/dataexec/runtime/luaengine"
	"github.com/jonwraymond/dataexec/session"
	"github.com/jonwraymond/dataexec/tools"
)

var version = mcpserver.DefaultVersion

func main() {
	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	if err != nil {
		return err
	}

	sess := session.New()
	facade, err := exec.New(exec.Options{
		Engine:         luaengine.New(luaengine.Config{MaxOutputBytes: cfg.MaxOutputBytes}),
		Session:        sess,
		DataDir:        cfg.DataDir,
		DefaultTimeout: cfg.DefaultTimeout,
		MaxOutputBytes: cfg.MaxOutputBytes,
		Logger:         &logger,
	})
	if err != nil {
		return err
	}

	server, err := mcpserver.New(tools.New(facade), mcpserver.Options{
		Version:  version,
		HTTPAddr: cfg.HTTPAddr,
		Logger:   &logger,
	})
	if err != nil {
		return err
	}

	kind, err := mcpserver.ParseTransport(cfg.Transport)
	if err != nil {
		return err
	}
	logger.Info().
		Str("session", sess.ID).
		Str("transport", string(kind)).
		Str("version", version).
		Msg("starting dataexec")
	return server.Serve(ctx, kind)
}

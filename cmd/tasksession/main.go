// Package main is the entry point for the tasksession CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tasksession/internal/backend/taskapi"
	"tasksession/internal/cli"
	"tasksession/internal/commands"
	"tasksession/internal/config"
	"tasksession/internal/credential"
	"tasksession/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Runs after the dispatcher has installed the slog default.
	factory := func(ctx context.Context, cfg *config.Config) (*session.Client, error) {
		store, err := credential.Open(cfg)
		if err != nil {
			return nil, err
		}
		backend := taskapi.NewFromConfig(cfg)
		return session.New(backend, store), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/memstore"
	"github.com/suparena/memstore/backend"
	"github.com/suparena/memstore/config"
	"github.com/suparena/memstore/datastore/testmodels"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "memstore",
		Short:         "Typed CRUD and query operations over pluggable cache engines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to a YAML configuration file")
	root.PersistentFlags().StringSlice("env-file", []string{".env"}, "environment files to load")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(newVersionCommand(), newDemoCommand(), newDestroyCommand())
	return root
}

// session is an opened backend with its template.
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	backend  *backend.Backend
	template *memstore.Template
}

func (s *session) close(ctx context.Context) error {
	defer func() { _ = s.logger.Sync() }()
	return s.backend.Close(ctx)
}

// openSession loads the configuration named by the command flags and opens
// the configured backend with the sample types registered.
func openSession(cmd *cobra.Command) (*session, error) {
	path, _ := cmd.Flags().GetString("config")
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")

	cfg, err := config.Load(path, envFiles...)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}

	reg := testmodels.NewRegistry()
	b, err := backend.Open(cmd.Context(), cfg, reg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	return &session{
		cfg:      cfg,
		logger:   logger,
		backend:  b,
		template: memstore.New(b, reg, memstore.WithLogger(logger)),
	}, nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDestroyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "destroy",
		Short: "Clear every sample cache in the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			// caches are created lazily, so open them before clearing
			aliases := s.template.Registry().Aliases()
			for _, alias := range aliases {
				if _, err := s.backend.Cache(cmd.Context(), alias); err != nil {
					return err
				}
			}
			if err := s.template.Destroy(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Destroyed %d caches on the %s backend\n", len(aliases), s.backend.Kind)
			return nil
		},
	}
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/suparena/memstore"
	"github.com/suparena/memstore/datastore/testmodels"
	"github.com/suparena/memstore/errors"
	"github.com/suparena/memstore/query"
)

func newDemoCommand() *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Seed sample people into the configured backend and query them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			if err := runDemo(cmd, s.template, cmd.OutOrStdout()); err != nil {
				return err
			}
			if keep {
				return nil
			}
			return memstore.DeleteAll[testmodels.Person](cmd.Context(), s.template)
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "keep the seeded records")
	return cmd
}

func runDemo(cmd *cobra.Command, tmpl *memstore.Template, out io.Writer) error {
	ctx := cmd.Context()

	for _, p := range testmodels.People() {
		if err := tmpl.CreateWithID(ctx, p.ID, p); err != nil && !errors.IsAlreadyExists(err) {
			return err
		}
	}

	all, err := memstore.ReadAll[testmodels.Person](ctx, tmpl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "All people:")
	printPeople(out, all)

	page, err := memstore.ReadRangeSorted[testmodels.Person](ctx, tmpl, 0, 3, query.SortBy(query.Descending("age")))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Oldest three:")
	printPeople(out, page)

	total, err := memstore.Count[testmodels.Person](ctx, tmpl)
	if err != nil {
		return err
	}
	over40, err := memstore.CountQuery[testmodels.Person](ctx, tmpl, query.New(query.Gt("age", 40)))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Count: %d (%d over 40)\n", total, over40)
	return nil
}

func printPeople(out io.Writer, people []testmodels.Person) {
	for _, p := range people {
		fmt.Fprintf(out, "  %-4s %-8s %3d\n", p.ID, p.Name, p.Age)
	}
}

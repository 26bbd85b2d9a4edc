// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hirexfed/internal/seed"
	"hirexfed/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("migrations applied")
		return nil
	},
}

var (
	seedReset bool
	seedForce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the default site content",
	Long: `Sets up the banner, homepage blocks, contact info, footer, the
client-consultation and join-our-team intake forms, the content pages and
the navigation menu.

The default mode is safe: items are matched by their natural key and
updated in place, and submissions are never touched. --reset deletes and
recreates the seeded content, including the seeded forms and every
submission and uploaded file they hold. Outside development it also
requires --force.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "destructive reset: replace seeded content, deleting form submissions")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "allow --reset outside development")
}

func runSeed(cmd *cobra.Command, args []string) error {
	opts := seed.Options{Reset: seedReset, Force: seedForce, Dev: cfg.IsDev()}
	if opts.Reset && !opts.Dev && !opts.Force {
		return seed.ErrResetRefused
	}

	content, err := seed.Load()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Reset deletes forms through the intake service so their files leave
	// the object store too. Notifications are never sent from here.
	blobs, err := openBlobStores(cfg)
	if err != nil {
		return err
	}
	intakeService := newIntakeService(cfg, db, blobs, nil)

	mode := "safe"
	if opts.Reset {
		mode = "reset"
		slog.Warn("destructive reset: seeded content and its submissions will be replaced")
	}
	slog.Info("seeding content", "mode", mode)

	report, err := seed.Run(cmd.Context(), seed.Stores{
		Site:       store.NewSiteStore(db),
		Navigation: store.NewNavigationStore(db),
		Pages:      store.NewPageStore(db),
		Sections:   store.NewSectionStore(db),
		Forms:      store.NewFormStore(db),
	}, intakeService, content, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seed complete (%s): %d created, %d updated, %d deleted.\n",
		mode, report.Created, report.Updated, report.Deleted)
	return nil
}

var checkSectionsCmd = &cobra.Command{
	Use:   "check-sections",
	Short: "List content sections whose page does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		orphans, err := store.NewSectionStore(db).ListOrphans(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(orphans) == 0 {
			fmt.Fprintln(out, "No orphan sections.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PAGE\tTYPE\tORDER\tTITLE\tID")
		for _, s := range orphans {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.Page, s.SectionType, s.SortOrder, s.Title, s.ID)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d orphan section(s). Create the pages or reassign the sections in the admin.\n", len(orphans))
		return nil
	},
}

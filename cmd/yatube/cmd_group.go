package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"yatube/internal/db"
	"yatube/internal/services"

	"github.com/spf13/cobra"
)

func openGroups() (*services.GroupService, func(), error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseDriver == db.DriverMemory {
		return nil, nil, errors.New("group commands need a persistent DATABASE_DRIVER (postgres, mysql or sqlite)")
	}
	repo, err := openRepository(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return services.NewGroupService(repo, logger), func() { _ = logger.Sync() }, nil
}

func runGroupCreate(cmd *cobra.Command, args []string) error {
	groups, done, err := openGroups()
	if err != nil {
		return err
	}
	defer done()

	g, err := groups.Create(cmd.Context(), services.GroupInput{
		Title:       groupTitle,
		Slug:        args[0],
		Description: groupDesc,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created group %d %s\n", g.ID, g.Slug)
	return nil
}

func runGroupList(cmd *cobra.Command, args []string) error {
	groups, done, err := openGroups()
	if err != nil {
		return err
	}
	defer done()

	list, err := groups.List(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tTITLE")
	for _, g := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
	}
	return tw.Flush()
}

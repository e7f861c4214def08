package main

import (
	"github.com/spf13/cobra"
)

var (
	envFile    string
	groupTitle string
	groupDesc  string

	rootCmd = &cobra.Command{
		Use:           "yatube",
		Short:         "Yatube blogging platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe, // cmd_serve.go
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE:  runMigrate,
	}

	// --- Groups ---
	groupCmd = &cobra.Command{
		Use:   "group",
		Short: "Manage groups (communities)",
	}
	groupCreateCmd = &cobra.Command{
		Use:   "create [slug]",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE:  runGroupCreate, // cmd_group.go
	}
	groupListCmd = &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE:  runGroupList,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "env file to load before reading the environment")

	groupCreateCmd.Flags().StringVar(&groupTitle, "title", "", "group title (required)")
	groupCreateCmd.Flags().StringVar(&groupDesc, "description", "", "group description")
	_ = groupCreateCmd.MarkFlagRequired("title")

	groupCmd.AddCommand(groupCreateCmd, groupListCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, groupCmd)
}

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "helpdesk",
		Short: "IT helpdesk ticketing API",
		RunE:  serve,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  serve,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations or create Mongo indexes for the configured store",
		RunE:  migrate,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	version = "dev"
)

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("helpdesk: %v", err)
	}
}

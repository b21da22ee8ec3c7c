package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sharearecipe",
	Short: "Social recipe sharing server",
	Long: `sharearecipe serves the recipe feed, comments, profiles and grocery
lists over a JSON API, with live updates pushed over WebSocket.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and print the schema version",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var groceryCmd = &cobra.Command{
	Use:   "grocery [ingredients...]",
	Short: "Categorize ingredient text into a grocery list",
	Long: `Splits ingredient text on newlines, commas and semicolons, classifies
each item and prints them grouped by aisle. Reads stdin when no arguments
are given.`,
	RunE: runGrocery,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (env SHAREARECIPE_* overrides it)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(groceryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Interact with the local state database",
}

// stateShowCmd represents the state show command
var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the stored user id and saved course cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, path, err := openState()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.Entries(context.Background())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Printf("No local state in %s\n", path)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tUPDATED\tVALUE\t")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t\n", e.Key, e.UpdatedAt.Format("2006-01-02 15:04:05"), e.Value)
		}
		return w.Flush()
	},
}

// stateShellCmd represents the state shell command
var stateShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the local state database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, dbPath, err := openState()
		if err != nil {
			return err
		}
		db.Close()

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the state shell")
		}

		// Print schema first
		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateShellCmd)
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acvora/acvora/internal/utils"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <userId>",
	Short: "Store your user id and fetch your saved courses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		db, path, err := openState()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		return utils.WithStateLock(ctx, path, func() error {
			if err := db.SetUserID(ctx, args[0]); err != nil {
				return err
			}
			tracker, err := newTracker(ctx, client, db)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%d saved courses)\n", tracker.UserID(), len(tracker.IDs()))
			return nil
		})
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget your user id and the cached saved courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, path, err := openState()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		return utils.WithStateLock(ctx, path, func() error {
			if err := db.ClearUserID(ctx); err != nil {
				return err
			}
			if err := db.ClearSavedCourses(ctx); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

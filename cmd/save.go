package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/acvora/acvora/internal/utils"
	"github.com/acvora/acvora/pkg/catalog"
	"github.com/acvora/acvora/pkg/explorer"
	"github.com/acvora/acvora/pkg/saved"
)

// saveCmd represents the save command
var saveCmd = &cobra.Command{
	Use:   "save <courseId>",
	Short: "Save a course to your account, or remove it when already saved",
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
			tracker, err := newTracker(ctx, client, db)
			if err != nil {
				return err
			}
			if tracker.UserID() == "" {
				return loginHint(saved.ErrLoginRequired)
			}
			ex := explorer.New(client, explorer.WithLogger(utils.Log))
			ex.Load(ctx)
			course, ok := ex.Find(args[0])
			if !ok {
				return fmt.Errorf("course not found: %s", args[0])
			}

			now, err := tracker.Toggle(ctx, course)
			if errors.Is(err, saved.ErrLoginRequired) {
				return loginHint(err)
			}
			if err != nil {
				return err
			}
			if now {
				fmt.Printf("Saved %s\n", course.Title)
			} else {
				fmt.Printf("Removed %s from saved courses\n", course.Title)
			}
			return nil
		})
	},
}

func loginHint(err error) error {
	return fmt.Errorf("%w (run: acvora login <userId>, path %s)", err, saved.LoginPath)
}

// savedCmd represents the saved command
var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List your saved courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFlags, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")

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
			tracker, err := newTracker(ctx, client, db)
			if err != nil {
				return err
			}
			if tracker.UserID() == "" {
				utils.Log.Warn("Not logged in, showing locally cached saved courses")
			}

			ex := explorer.New(client, explorer.WithSaved(tracker), explorer.WithLogger(utils.Log))
			ex.Load(ctx)

			var cards []catalog.CourseCard
			for _, c := range ex.Visible() {
				if c.Saved {
					cards = append(cards, c)
				}
			}
			// saved ids no longer in the catalog
			for _, id := range tracker.IDs() {
				if _, ok := ex.Find(id); !ok {
					utils.Log.Debugf("Saved course %s is not in the catalog", id)
				}
			}
			if len(cards) == 0 {
				fmt.Println("No saved courses")
				return nil
			}
			return catalog.PrintCourses(os.Stdout, cards, outputFlags, delimiter)
		})
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(savedCmd)
	savedCmd.Flags().StringP("output", "o", "it", "Output flags. Supported: i (id), t (title), s (stream), y (degree type), l (level), d (duration), x (specializations), e (exams), c (city/state), g (eligibility), b (saved marker)")
	savedCmd.Flags().StringP("delimiter", "d", " ", "Delimiter character to use for txt output format")
}

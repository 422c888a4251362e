package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/acvora/acvora/internal/utils"
	"github.com/acvora/acvora/pkg/catalog"
	"github.com/acvora/acvora/pkg/exams"
)

// examsCmd represents the exams command
var examsCmd = &cobra.Command{
	Use:   "exams",
	Short: "List entrance exams by Upcoming, Ongoing or Past",
	RunE: func(cmd *cobra.Command, args []string) error {
		tabFlag, _ := cmd.Flags().GetString("tab")
		search, _ := cmd.Flags().GetString("search")
		compare, _ := cmd.Flags().GetString("compare")
		outputFlags, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")

		tab, err := exams.ParseTab(tabFlag)
		if err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		dash := exams.NewDashboard(client, exams.WithLogger(utils.Log))
		dash.Load(context.Background())
		dash.SetTab(tab)
		dash.SetSearch(search)

		ids := utils.SplitCSV(compare)
		if len(ids) > 0 {
			for _, id := range ids {
				dash.ToggleCompare(id)
			}
			return printCompared(dash, outputFlags, delimiter)
		}

		cards := dash.Visible()
		list := make([]catalog.Exam, len(cards))
		for i, c := range cards {
			list[i] = c.Exam
		}
		if len(list) == 0 {
			fmt.Printf("No %s exams found\n", tab)
			return nil
		}
		return catalog.PrintExams(os.Stdout, list, outputFlags, delimiter)
	},
}

// printCompared prints the compared exams in selection order, across tabs.
func printCompared(dash *exams.Dashboard, outputFlags, delimiter string) error {
	byID := map[string]catalog.Exam{}
	for _, e := range dash.All() {
		byID[e.ID] = e
	}
	var list []catalog.Exam
	for _, id := range dash.Compared() {
		e, ok := byID[id]
		if !ok {
			utils.Log.Warnf("Exam %s not found, skipping", id)
			continue
		}
		list = append(list, e)
	}
	return catalog.PrintExams(os.Stdout, list, outputFlags, delimiter)
}

func init() {
	rootCmd.AddCommand(examsCmd)
	examsCmd.Flags().StringP("tab", "t", string(exams.Upcoming), "Tab to show. Available: Upcoming, Ongoing, Past")
	examsCmd.Flags().StringP("search", "s", "", "Case-insensitive exam name search")
	examsCmd.Flags().StringP("compare", "c", "", "Comma separated exam ids to compare side by side")
	examsCmd.Flags().StringP("output", "o", "nbe", "Output flags. Supported: i (id), n (name), b (conducting body), e (next event), m (mode & level), d (date)")
	examsCmd.Flags().StringP("delimiter", "d", " | ", "Delimiter character to use for txt output format")
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/acvora/acvora/internal/utils"
	"github.com/acvora/acvora/pkg/catalog"
	"github.com/acvora/acvora/pkg/explorer"
	"github.com/acvora/acvora/pkg/facets"
)

// facetFlags maps command line flags to the facet they select.
var facetFlags = []struct {
	flag string
	key  facets.Key
}{
	{"stream", facets.Streams},
	{"type", facets.CourseType},
	{"level", facets.CourseLevel},
	{"state", facets.States},
	{"city", facets.Cities},
	{"exam", facets.Exams},
	{"course", facets.Courses},
	{"specialization", facets.Specializations},
}

// coursesCmd represents the courses command
var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Filter and list the course catalog",
	Long: `Lists the course catalog filtered by facets and a title search.

Values of the same facet are alternatives, different facets must all match.
Selecting a specialization ignores every other facet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		sortFlag, _ := cmd.Flags().GetString("sort")
		showFacets, _ := cmd.Flags().GetBool("facets")
		showSpecs, _ := cmd.Flags().GetBool("specs")
		details, _ := cmd.Flags().GetString("details")
		outputFlags, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")

		sortKey, err := facets.ParseSortKey(sortFlag)
		if err != nil {
			return err
		}

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

			ex := explorer.New(client, explorer.WithSaved(tracker), explorer.WithLogger(utils.Log))
			ex.Load(ctx)

			for _, f := range facetFlags {
				values, _ := cmd.Flags().GetStringArray(f.flag)
				for _, v := range values {
					if !ex.Selection().Has(f.key, v) {
						ex.ToggleFilter(f.key, v)
					}
				}
			}
			ex.SetSearch(search)
			ex.SetSort(sortKey)

			switch {
			case showFacets:
				printFacets(ex)
			case showSpecs:
				opts, shown := ex.SpecializationOptions()
				if !shown {
					fmt.Println("No specializations for the current selection (select a stream or course first)")
					return nil
				}
				for _, o := range opts {
					fmt.Println(o)
				}
			case details != "":
				ex.ToggleExpanded(details)
				c, ok := ex.Find(ex.Expanded())
				if !ok {
					return fmt.Errorf("course not found: %s", details)
				}
				catalog.PrintCourseDetails(os.Stdout, c, client.BaseURL())
			default:
				cards := ex.Visible()
				if err := catalog.PrintCourses(os.Stdout, cards, outputFlags, delimiter); err != nil {
					return err
				}
				utils.Log.Infof("Showing %d of %d courses", len(cards), ex.Count())
			}
			return nil
		})
	},
}

func printFacets(ex *explorer.Explorer) {
	for _, k := range facets.Keys() {
		if k == facets.Specializations {
			continue
		}
		fmt.Printf("%s (--%s):\n", facets.Label(k), flagFor(k))
		for _, v := range ex.Options(k) {
			marker := " "
			if ex.Selection().Has(k, v) {
				marker = "x"
			}
			fmt.Printf("  [%s] %s\n", marker, v)
		}
	}
}

func flagFor(k facets.Key) string {
	for _, f := range facetFlags {
		if f.key == k {
			return f.flag
		}
	}
	return string(k)
}

func init() {
	rootCmd.AddCommand(coursesCmd)

	for _, f := range facetFlags {
		coursesCmd.Flags().StringArray(f.flag, nil, "Select a "+facets.Label(f.key)+" value (repeatable)")
	}
	coursesCmd.Flags().StringP("search", "s", "", "Case-insensitive course title search")
	coursesCmd.Flags().String("sort", "default", "Sort order. Available: default, alpha, duration")
	coursesCmd.Flags().Bool("facets", false, "Print the facet options instead of courses")
	coursesCmd.Flags().Bool("specs", false, "Print the specializations offered for the selected streams or courses")
	coursesCmd.Flags().String("details", "", "Print the expanded card of a course id")
	coursesCmd.Flags().StringP("output", "o", "btd", "Output flags. Supported: i (id), t (title), s (stream), y (degree type), l (level), d (duration), x (specializations), e (exams), c (city/state), g (eligibility), b (saved marker)")
	coursesCmd.Flags().StringP("delimiter", "d", " ", "Delimiter character to use for txt output format")
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glemmtal/alpbot/internal/index"
)

var (
	searchLimit int
	searchTheme string
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge index",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}
	cmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "Maximum number of results")
	cmd.Flags().StringVarP(&searchTheme, "theme", "t", "", "Restrict to one theme")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	log := newLogger()
	defer log.Sync()

	idx := openIndex(log)
	defer idx.Close()

	loader := newLoader(idx, log)
	if _, err := loader.Statistics(cmd.Context()); err != nil {
		exitErr("load corpus", err)
	}

	var filter *index.Filter
	if searchTheme != "" {
		filter = &index.Filter{Theme: searchTheme}
	}

	query := strings.Join(args, " ")
	results, err := idx.Search(cmd.Context(), query, searchLimit, filter)
	if err != nil {
		exitErr("search", err)
	}

	if formatFlag == "text" {
		for i, r := range results {
			meta := r.Passage.Metadata
			fmt.Printf("%d. [%s] %s", i+1, meta.Theme, meta.Heading)
			if meta.Subheading != "" {
				fmt.Printf(" / %s", meta.Subheading)
			}
			fmt.Printf(" (score %.3f)\n%s\n\n", r.Score, r.Passage.Text)
		}
		return
	}
	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}

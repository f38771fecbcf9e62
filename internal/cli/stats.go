package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge corpus statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	log := newLogger()
	defer log.Sync()

	idx := openIndex(log)
	defer idx.Close()

	loader := newLoader(idx, log)
	stats, err := loader.Statistics(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag == "text" {
		fmt.Printf("%d passages in %d themes (%s)\n",
			stats.TotalDocuments, len(stats.Themes), strings.Join(stats.Themes, ", "))
		for theme, n := range stats.DocumentsByTheme {
			fmt.Printf("  %s: %d\n", theme, n)
		}
		return
	}
	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}

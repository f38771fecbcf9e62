package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the knowledge directory into the index",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	log := newLogger()
	defer log.Sync()

	idx := openIndex(log)
	defer idx.Close()

	loader := newLoader(idx, log)
	counts, err := loader.ImportAll(cmd.Context())
	if err != nil {
		exitErr("import", err)
	}

	if formatFlag == "text" {
		for file, n := range counts {
			fmt.Printf("%s: %d passages\n", file, n)
		}
		return
	}
	b, _ := json.MarshalIndent(counts, "", "  ")
	fmt.Println(string(b))
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the configured API credential",
		Run:   runVerify,
	}

	RootCmd.AddCommand(cmd)
}

func runVerify(cmd *cobra.Command, args []string) {
	log := newLogger()
	defer log.Sync()

	cfg := loadConfig()
	bot := newAdvisor(cfg, nil, nil, log)

	ok, msg := bot.VerifyCredential(cmd.Context())
	fmt.Println(msg)
	if !ok {
		os.Exit(1)
	}
}

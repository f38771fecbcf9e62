package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glemmtal/alpbot/internal/advisor"
	"github.com/glemmtal/alpbot/internal/knowledge"
)

var watchFlag bool

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question-and-answer session",
		Long:  "Reads questions from stdin and answers them against the knowledge corpus. Exit with 'exit' or Ctrl-D.",
		Run:   runChat,
	}
	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-import knowledge files when they change")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	log := newLogger()
	defer log.Sync()

	cfg := loadConfig()
	idx := openIndex(log)
	defer idx.Close()

	loader := newLoader(idx, log)
	bot := newAdvisor(cfg, idx, loader, log)
	session := advisor.NewSession(bot)

	ctx := cmd.Context()

	if watchFlag {
		watcher, err := knowledge.NewWatcher(loader, log)
		if err != nil {
			exitErr("watch knowledge dir", err)
		}
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	fmt.Println("Servus! Frag mich alles über Saalbach-Hinterglemm. ('exit' zum Beenden)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		fmt.Println(session.Ask(ctx, query))
		fmt.Println()
	}

	fmt.Println("Bis bald!")
}

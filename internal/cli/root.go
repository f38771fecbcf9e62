// Package cli implements the alpbot CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glemmtal/alpbot/internal/advisor"
	"github.com/glemmtal/alpbot/internal/config"
	"github.com/glemmtal/alpbot/internal/embedding"
	"github.com/glemmtal/alpbot/internal/index"
	"github.com/glemmtal/alpbot/internal/knowledge"
	"github.com/glemmtal/alpbot/internal/llm"
	"github.com/glemmtal/alpbot/internal/logging"
)

var (
	knowledgeDir string
	configPath   string
	formatFlag   string
	debugFlag    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "alpbot",
	Short: "Tourism-advice chatbot for Saalbach-Hinterglemm",
	Long:  "Retrieval-augmented tourism chatbot: imports local markdown knowledge, searches it and answers questions like a local.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&knowledgeDir, "knowledge", "k", "", "Knowledge directory (default: ./knowledge)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ~/.alpbot/config.json)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Verbose logging")
}

func newLogger() *zap.Logger {
	return logging.New(debugFlag)
}

func loadConfig() *config.Config {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

func openIndex(log *zap.Logger) index.Index {
	return index.Open(index.Options{
		Embedder: embedding.NewFromEnv(),
		Logger:   log,
	})
}

func newLoader(idx index.Index, log *zap.Logger) *knowledge.Loader {
	return knowledge.NewLoader(knowledgeDir, idx, log)
}

func newAdvisor(cfg *config.Config, idx index.Index, loader *knowledge.Loader, log *zap.Logger) *advisor.Advisor {
	return advisor.New(advisor.Options{
		APIKey:    cfg.APIKey(),
		Model:     cfg.Settings.Model,
		MaxTokens: cfg.Settings.MaxTokens,
		Retrieval: cfg.Retrieval(),
		Loader:    loader,
		Index:     idx,
		Client:    llm.NewOpenAIClient(llm.Config{APIKey: cfg.APIKey()}),
		Logger:    log,
	})
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

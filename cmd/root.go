package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ragchat-be",
	Short: "Role-scoped retrieval chat backend",
	Long: `ragchat-be answers employee questions from a department-tagged
document index. Users only ever see passages their department is
permitted to read.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
}

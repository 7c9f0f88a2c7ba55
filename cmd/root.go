package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "skilltrack",
	Short: "Corporate course tracker for the terminal",
	Long: "skilltrack: managers author courses and assign them to employees; " +
		"employees work through lessons and tasks at their own pace.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		return config.LoadDotEnv(envFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SKILLTRACK_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file loaded before reading the environment")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

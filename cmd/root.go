// Package cmd wires the CLI.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillforge/excel-interview/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "excel-interview",
	Short: "Adaptive spreadsheet skills interview service",
	Long: `excel-interview runs an HTTP service that conducts adaptive
spreadsheet skills interviews: it generates questions, evaluates answers,
adjusts difficulty per skill area and produces a final assessment report.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "log in JSON format")

	must(viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")))
	must(viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("log-json")))
}

func initConfig() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("INTERVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "read config: %v\n", err)
			os.Exit(1)
		}
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

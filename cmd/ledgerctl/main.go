package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"moneyflow/internal/cli"
	applog "moneyflow/internal/log"
)

var (
	cfgFile string
	version = "dev"
	logger  = applog.New(applog.Config{Output: os.Stderr, Component: applog.ComponentCLI})
	rootCmd = &cobra.Command{
		Use:   "ledgerctl",
		Short: "Offline tools for moneyflow ledgers",
		Long: `ledgerctl replays transaction files through a ledger and reports on
sessions recorded in the SQLite journal. sheets-auth authorizes the Google
Sheets journal with a user account.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./ledgerctl.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json)")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite journal (default $SQLITE_DB_PATH or ./data/journal.db)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(sheetsAuthCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("ledgerctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LEDGERCTL")
	viper.AutomaticEnv()
	// the journal path is shared with the server and worker
	_ = viper.BindEnv("db", "LEDGERCTL_DB", "SQLITE_DB_PATH")
	viper.SetDefault("db", "./data/journal.db")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return setupLogging()
}

func setupLogging() error {
	level, err := applog.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}
	format := viper.GetString("logging.format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format: %s", format)
	}

	logger = applog.New(applog.Config{
		Level:     level,
		Format:    format,
		Component: applog.ComponentCLI,
		Output:    os.Stderr,
	})
	applog.SetDefault(logger)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ledgerctl", version)
		},
	}
}

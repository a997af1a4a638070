package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/weiwei-tsao/gold-catalog/internal/platform/logging"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "catalogctl",
		Short: "Gold-priced product catalog from the terminal",
		Long: `catalogctl prices the product catalog against the live gold quote.

It talks to the gold quote API directly, or to a running catalog server with --site.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./catalogctl.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("gold-api-key", "", "gold quote API key (default: $GOLD_API_KEY)")
	rootCmd.PersistentFlags().Bool("mock", false, "use a fixed gold quote instead of calling the API")
	rootCmd.PersistentFlags().Duration("timeout", 0, "timeout for outbound requests (default 10s)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("gold.api_key", rootCmd.PersistentFlags().Lookup("gold-api-key"))
	_ = viper.BindPFlag("gold.mock", rootCmd.PersistentFlags().Lookup("mock"))
	_ = viper.BindPFlag("http.timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	rootCmd.AddCommand(quoteCmd())
	rootCmd.AddCommand(productsCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load(".env.local", ".env")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("catalogctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CATALOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// The server's variable names work too.
	_ = viper.BindEnv("gold.api_key", "CATALOG_GOLD_API_KEY", "GOLD_API_KEY")
	_ = viper.BindEnv("gold.api_url", "CATALOG_GOLD_API_URL", "GOLD_API_URL")
	_ = viper.BindEnv("gold.mock", "CATALOG_GOLD_MOCK", "GOLD_API_MOCK")

	viper.SetDefault("http.timeout", "10s")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := logging.Setup(os.Stderr, viper.GetString("logging.level"), viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "catalogctl %s\n", version)
		},
	}
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/weiwei-tsao/gold-catalog/internal/business/quote"
	"github.com/weiwei-tsao/gold-catalog/internal/platform/goldapi"
)

func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Print the gold price per gram",
		Long: `Fetch the spot gold quote and print the price per gram in USD,
rounded to two decimals the same way the server's /api/getGold does.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			perGram, err := newQuoteService().PricePerGram(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch gold price: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Gold")+" "+perGram+" USD/g")
			return nil
		},
	}
}

func newQuoteService() *quote.Service {
	client := goldapi.New(nil, goldapi.Config{
		APIKey:  viper.GetString("gold.api_key"),
		BaseURL: viper.GetString("gold.api_url"),
		Mock:    viper.GetBool("gold.mock"),
		Timeout: requestTimeout(),
	})
	return quote.NewService(client, nil, 0)
}

func requestTimeout() time.Duration {
	if d := viper.GetDuration("http.timeout"); d > 0 {
		return d
	}
	return 10 * time.Second
}

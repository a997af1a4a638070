package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/weiwei-tsao/gold-catalog/internal/business/quote"
	"github.com/weiwei-tsao/gold-catalog/internal/platform/goldapi"
)

const attempts = 3

func main() {
	// Load environment variables from .env files
	_ = godotenv.Load(".env.local", ".env")

	apiKey := strings.TrimSpace(os.Getenv("GOLD_API_KEY"))
	mock := strings.ToLower(os.Getenv("GOLD_API_MOCK")) == "true"
	if apiKey == "" && !mock {
		log.Fatal("GOLD_API_KEY environment variable not set")
	}
	if mock {
		log.Println("WARNING: GOLD_API_MOCK is set to true. This test will use the fixed mock quote.")
		log.Println("Set GOLD_API_MOCK=false to test the real gold API.")
	}

	client := goldapi.New(nil, goldapi.Config{
		APIKey:  apiKey,
		BaseURL: os.Getenv("GOLD_API_URL"),
		Mock:    mock,
	})

	fmt.Println("=== Gold API Test Script ===")
	fmt.Printf("Calling the quote API %d times\n\n", attempts)

	ctx := context.Background()
	failures := 0
	for i := 1; i <= attempts; i++ {
		reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		start := time.Now()
		perOunce, err := client.PricePerOunce(reqCtx)
		cancel()
		elapsed := time.Since(start).Round(time.Millisecond)

		if err != nil {
			failures++
			var statusErr *goldapi.StatusError
			if errors.As(err, &statusErr) {
				fmt.Printf("[%d] HTTP %d after %s: %s\n", i, statusErr.StatusCode, elapsed, statusErr.Body)
			} else {
				fmt.Printf("[%d] error after %s: %v\n", i, elapsed, err)
			}
			if errors.Is(err, goldapi.ErrCircuitOpen) {
				break
			}
			continue
		}
		fmt.Printf("[%d] %.2f USD/oz -> %s USD/g (%s)\n", i, perOunce, quote.FormatPerGram(perOunce), elapsed)
	}

	fmt.Println()
	if failures > 0 {
		log.Fatalf("%d of %d calls failed", failures, attempts)
	}
	fmt.Println("All calls succeeded")
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/nljewellers/ledger/internal/infra/gateway/goldapi"
	"github.com/nljewellers/ledger/internal/module/pricing"
	"github.com/nljewellers/ledger/pkg/config"
	"github.com/nljewellers/ledger/pkg/logger"
)

var (
	priceWeight string
	pricePurity string
	priceMaking string
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Show current gold and silver rates per gram (INR)",
	Long: `Without flags, price prints the live per-gram rates. With --weight
and --purity it also prints a value estimate for that piece.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrice()
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().StringVarP(&priceWeight, "weight", "w", "", "Weight in grams to estimate")
	priceCmd.Flags().StringVarP(&pricePurity, "purity", "p", "916", "Purity code for the estimate")
	priceCmd.Flags().StringVarP(&priceMaking, "making", "m", "0", "Making charge percentage")
}

func runPrice() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.GoldAPIKey == "" {
		return fmt.Errorf("GOLD_API_KEY is not configured")
	}

	purities, err := config.LoadPurityConfig(cfg.PurityConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load purity config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := goldapi.NewClient(cfg.GoldAPIURL, cfg.GoldAPIKey)
	svc := pricing.NewService(client, nil, purities, logger.NewDefault(cfg.Env))

	rates, err := svc.CurrentRates(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rates: %w", err)
	}

	fmt.Printf("Gold:   %s/g\n", rates.GoldPerGram.StringFixed(2))
	fmt.Printf("Silver: %s/g\n", rates.SilverPerGram.StringFixed(2))
	fmt.Printf("As of:  %s\n", rates.FetchedAt.Format(time.RFC3339))

	if priceWeight == "" {
		return nil
	}

	weight, err := decimal.NewFromString(priceWeight)
	if err != nil {
		return fmt.Errorf("invalid weight %q", priceWeight)
	}
	making, err := decimal.NewFromString(priceMaking)
	if err != nil {
		return fmt.Errorf("invalid making percentage %q", priceMaking)
	}

	est, err := svc.Estimate(ctx, weight, pricePurity, making)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Estimate for %sg @ %s:\n", est.WeightGrams.String(), est.Purity)
	fmt.Printf("  Metal value:   %s\n", est.MetalValue.StringFixed(2))
	fmt.Printf("  Making charge: %s\n", est.MakingCharge.StringFixed(2))
	fmt.Printf("  Total:         %s\n", est.TotalValue.StringFixed(2))
	return nil
}

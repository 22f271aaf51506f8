package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/prep-coach/internal/urlsafe"
)

var (
	researchDomain string
	researchFast   bool
	researchDebug  bool
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run web research only and print the result as JSON",
	RunE:  runResearch,
}

func init() {
	researchCmd.Flags().StringVar(&researchDomain, "domain", "", "Company domain, e.g. stripe.com (required)")
	researchCmd.Flags().BoolVar(&researchFast, "fast-web", false, "Faster, shallower web research")
	researchCmd.Flags().BoolVar(&researchDebug, "debug", false, "Emit event logs to stderr")
	_ = researchCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newAgent(ctx, researchFast, researchDebug)
	if err != nil {
		return err
	}
	defer a.close()

	research, err := a.researcher.ResearchCompany(ctx, researchDomain)
	if err != nil {
		var invalid *urlsafe.InvalidDomainError
		if errors.As(err, &invalid) {
			return fmt.Errorf("invalid company domain %q", invalid.Domain)
		}
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(research)
}

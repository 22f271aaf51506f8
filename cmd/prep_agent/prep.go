package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/prep-coach/internal/observability"
	"github.com/jonathan/prep-coach/internal/store"
	"github.com/jonathan/prep-coach/internal/types"
	"github.com/jonathan/prep-coach/internal/urlsafe"
	"github.com/jonathan/prep-coach/internal/webresearch"
)

var (
	prepDomain     string
	prepUserID     string
	prepOutDir     string
	prepFastWeb    bool
	prepEmailOnly  bool
	prepSaveToDocs bool
	prepDebug      bool
)

var prepCmd = &cobra.Command{
	Use:   "prep",
	Short: "Run the full interview prep pipeline",
	Long:  `Analyze email history with the company, research its web presence, and generate a personalized prep report.`,
	RunE:  runPrep,
}

func init() {
	prepCmd.Flags().StringVar(&prepDomain, "domain", "", "Company domain, e.g. stripe.com (required)")
	prepCmd.Flags().StringVar(&prepUserID, "user-id", "", "User ID for Gmail and Docs access, usually your email (required)")
	prepCmd.Flags().StringVar(&prepOutDir, "out", ".", "Directory for the report file")
	prepCmd.Flags().BoolVar(&prepFastWeb, "fast-web", false, "Faster, shallower web research")
	prepCmd.Flags().BoolVar(&prepEmailOnly, "email-only", false, "Skip web research entirely")
	prepCmd.Flags().BoolVar(&prepSaveToDocs, "save-to-docs", false, "Also save the report to Google Docs")
	prepCmd.Flags().BoolVar(&prepDebug, "debug", false, "Emit event logs to stderr")
	_ = prepCmd.MarkFlagRequired("domain")
	_ = prepCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(prepCmd)
}

func runPrep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if !urlsafe.IsSafeDomain(prepDomain) {
		return fmt.Errorf("invalid company domain %q", prepDomain)
	}

	a, err := newAgent(ctx, prepFastWeb, prepDebug)
	if err != nil {
		return err
	}
	defer a.close()

	company := webresearch.CompanyName(prepDomain)

	var st *store.Store
	var runID runHandle
	if a.cfg.DatabaseURL != "" {
		st, err = store.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open run store: %w", err)
		}
		defer st.Close()
		runID, err = beginRun(ctx, st, prepDomain, company)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Preparing interview brief for %s (%s)\n", company, prepDomain)

	printer := observability.NewPrinter(os.Stdout)

	fmt.Printf("Analyzing email history with %s...\n", prepDomain)
	insight := a.analyzer.AnalyzeCompanyEmails(ctx, prepDomain, prepUserID)
	printer.PrintEmailInsight(insight)

	var research *types.WebResearch
	if !prepEmailOnly {
		fmt.Printf("Researching %s...\n", prepDomain)
		research, err = a.researcher.ResearchCompany(ctx, prepDomain)
		if err != nil {
			failRun(ctx, st, runID)
			var invalid *urlsafe.InvalidDomainError
			if errors.As(err, &invalid) {
				return fmt.Errorf("invalid company domain %q", invalid.Domain)
			}
			return err
		}
		printer.PrintWebResearch(research)
	}

	if st != nil {
		saveRunArtifacts(ctx, st, runID, insight, research)
	}

	fmt.Println("Generating prep report...")
	reportText := a.coach.CreateReport(ctx, company, insight, research)

	path, err := saveReportLocally(company, reportText, prepOutDir)
	if err != nil {
		failRun(ctx, st, runID)
		return err
	}
	fmt.Printf("Report saved to %s\n", path)

	if prepSaveToDocs {
		info, err := a.coach.SaveToDocs(ctx, company, reportText, prepUserID)
		if err != nil {
			fmt.Printf("Could not save to Google Docs: %v\n", err)
		} else {
			printer.PrintDocumentInfo(info)
		}
	}

	if st != nil {
		completeRun(ctx, st, runID, reportText)
	}
	return nil
}

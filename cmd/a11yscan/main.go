package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/v0xg/a11yscan/internal/api"
	"github.com/v0xg/a11yscan/internal/config"
	"github.com/v0xg/a11yscan/internal/logger"
	"github.com/v0xg/a11yscan/internal/scan"
)

var version = "dev"

var (
	cfgFile string
	debug   bool

	plan        string
	budget      int
	scanID      string
	customerID  string
	email       string
	companyName string
	output      string

	v = viper.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "a11yscan",
		Short: "Crawl a website and audit it for accessibility",
		Long: `a11yscan crawls a site within a page budget, runs axe-core on every page,
scores the result and, depending on the plan, asks an AI model to explain each
rule and review the most important pages.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Init(v, cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(scanCommand(), serveCommand(), versionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func scanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <url>",
		Short: "Scan one site and print the JSON report",
		Example: `  a11yscan scan https://example.com
  a11yscan scan example.com --plan guest --budget 10 -o report.json`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().StringVar(&plan, "plan", "free", "Plan tier: free, guest, essentials, professional")
	cmd.Flags().IntVar(&budget, "budget", 0, "Page budget, 1-50 (default 50)")
	cmd.Flags().StringVar(&scanID, "scan-id", "", "Scan id (default: random UUID)")
	cmd.Flags().StringVar(&customerID, "customer-id", "cli", "Customer id echoed in the report")
	cmd.Flags().StringVar(&email, "email", "", "Contact email echoed in the report")
	cmd.Flags().StringVar(&companyName, "company", "", "Company name echoed in the report")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")

	return cmd
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scan API",
		RunE:  runServe,
	}

	cmd.Flags().Int("port", 8080, "Port to listen on")
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("a11yscan %s\n", version)
		},
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Server.ScanTimeout)
	defer cancel()

	scanner, err := buildScanner(ctx, cfg, log)
	if err != nil {
		return err
	}

	id := scanID
	if id == "" {
		id = uuid.NewString()
	}

	fmt.Fprintf(os.Stderr, "→ Scanning %s (plan %s)...\n", args[0], plan)
	resp := scanner.Scan(ctx, scan.Request{
		URL:         args[0],
		ScanID:      id,
		CustomerID:  customerID,
		Plan:        plan,
		PageBudget:  budget,
		Email:       email,
		CompanyName: companyName,
	})

	if err := writeReport(resp); err != nil {
		return err
	}

	if !resp.Success {
		return fmt.Errorf("scan failed: %s", resp.Error)
	}
	fmt.Fprintf(os.Stderr, "✓ %d pages, %d violations, score %d\n",
		resp.PagesScanned, resp.TotalViolations, resp.ComplianceScore)
	return nil
}

func writeReport(resp *scan.Response) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", output)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner, err := buildScanner(ctx, cfg, log)
	if err != nil {
		return err
	}

	srv := api.NewServer(api.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		ScanTimeout:     cfg.Server.ScanTimeout,
		Debug:           debug,
		Version:         version,
	}, scanner, log)

	return srv.Run(ctx)
}

func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, log, nil
}

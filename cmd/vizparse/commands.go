package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ukaji3/vizparse-go/internal/config"
	"github.com/ukaji3/vizparse-go/internal/logging"
	"github.com/ukaji3/vizparse-go/internal/server"
	"github.com/ukaji3/vizparse-go/internal/session"
	"github.com/ukaji3/vizparse-go/pkg/vizparse"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/chart"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/output"
	"go.uber.org/zap"
)

// app holds flag values and the state built before a command runs.
type app struct {
	configPath string
	verbose    bool
	outputPath string
	pretty     bool
	delimiter  string
	encoding   string
	chartHint  bool

	chartJS   bool
	chartType string
	xField    string
	yField    string
	addr      string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "vizparse",
		Short: "Turn CSV, Excel and PDF tables into charts",
		Long: `vizparse extracts a table from a CSV, XLSX or PDF file, infers a default
chart for it and outputs JSON, a chart.js document or an Excel workbook.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: "+config.DefaultPath+" if present)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&a.outputPath, "output", "o", "", "Output file path (default: stdout)")
	pf.BoolVar(&a.pretty, "pretty", false, "Pretty-print JSON output")
	pf.StringVar(&a.delimiter, "delimiter", "", "CSV delimiter: one character or \"tab\" (default: detect)")
	pf.StringVar(&a.encoding, "encoding", "", "CSV text encoding: utf-8, latin1, windows-1252")
	pf.BoolVar(&a.chartHint, "chart-hint", false, "Read the chart embedded in a workbook")

	parseCmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Extract the table of a file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runParse,
	}

	inferCmd := &cobra.Command{
		Use:   "infer <file>",
		Short: "Infer the default chart configuration of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runInfer,
	}
	inferCmd.Flags().BoolVar(&a.chartJS, "chartjs", false, "Output a chart.js document")
	addEditFlags(inferCmd, a)

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the table and its chart to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runExport,
	}
	addEditFlags(exportCmd, a)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
	serveCmd.Flags().StringVar(&a.addr, "addr", "", "Listen address (default: server.addr)")

	rootCmd.AddCommand(parseCmd, inferCmd, exportCmd, serveCmd)
	return rootCmd
}

func addEditFlags(cmd *cobra.Command, a *app) {
	cmd.Flags().StringVar(&a.chartType, "type", "", "Chart type: "+chartTypeList())
	cmd.Flags().StringVar(&a.xField, "x", "", "Header for the x axis")
	cmd.Flags().StringVar(&a.yField, "y", "", "Numeric header for the y axis")
}

func chartTypeList() string {
	names := make([]string, len(models.ChartTypes))
	for i, t := range models.ChartTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("delimiter") {
		cfg.Parse.Delimiter = a.delimiter
	}
	if cmd.Flags().Changed("encoding") {
		cfg.Parse.Encoding = a.encoding
	}
	if cmd.Flags().Changed("chart-hint") {
		cfg.Parse.ReadChartHint = a.chartHint
		cfg.Chart.UseHint = a.chartHint
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, a.verbose)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) parseOptions() vizparse.Options {
	delim, _ := a.cfg.Parse.DelimiterRune()
	return vizparse.Options{
		Delimiter:            delim,
		Encoding:             a.cfg.Parse.Encoding,
		ReadChartHint:        a.cfg.Parse.ReadChartHint,
		MaxDecompressedBytes: a.cfg.Parse.MaxDecompressedBytes,
		Logger:               a.logger,
	}
}

func (a *app) parseFile(ctx context.Context, path string) (*models.Dataset, error) {
	if a.cfg.Server.ParseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Server.ParseTimeout)
		defer cancel()
	}
	ds, err := vizparse.ParseFile(ctx, path, a.parseOptions())
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	return ds, nil
}

// chart infers the default chart for ds and applies the --type, --x and
// --y edits.
func (a *app) chart(ds *models.Dataset) (*models.ChartConfig, error) {
	cfg, ok := a.cfg.Chart.Inferrer().Infer(ds)
	if !ok {
		return nil, fmt.Errorf("%s: no numeric column to chart", ds.Source)
	}

	var err error
	if a.chartType != "" {
		t, perr := models.ParseChartType(a.chartType)
		if perr != nil {
			return nil, perr
		}
		if cfg, err = chart.SetChartType(cfg, t); err != nil {
			return nil, err
		}
	}
	if a.xField != "" {
		if cfg, err = chart.SetAxis(cfg, ds, chart.AxisX, a.xField); err != nil {
			return nil, err
		}
	}
	if a.yField != "" {
		if cfg, err = chart.SetAxis(cfg, ds, chart.AxisY, a.yField); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (a *app) runParse(cmd *cobra.Command, args []string) error {
	ds, err := a.parseFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return a.write(cmd, ds)
}

func (a *app) runInfer(cmd *cobra.Command, args []string) error {
	ds, err := a.parseFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cfg, err := a.chart(ds)
	if err != nil {
		return err
	}
	if !a.chartJS {
		return a.write(cmd, cfg)
	}
	doc, err := chart.ToChartJS(cfg)
	if err != nil {
		return err
	}
	return a.write(cmd, doc)
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	if a.outputPath == "" {
		return fmt.Errorf("export requires --output")
	}
	ds, err := a.parseFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cfg, err := a.chart(ds)
	if err != nil {
		return err
	}

	f, err := os.Create(a.outputPath)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := chart.ExportXLSX(ds, cfg, f); err != nil {
		f.Close()
		os.Remove(a.outputPath)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	a.logger.Info("workbook written",
		zap.String("file", a.outputPath),
		zap.String("chart_type", string(cfg.ChartType)))
	return nil
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := a.cfg.Server.Addr
	if a.addr != "" {
		addr = a.addr
	}

	store := session.NewStore(a.cfg.Server.SessionTTL, a.logger)
	go store.Run(ctx, a.cfg.Server.SweepInterval)

	srv := server.New(store, server.Options{
		Parse:          a.parseOptions(),
		Inferrer:       a.cfg.Chart.Inferrer(),
		MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
		ParseTimeout:   a.cfg.Server.ParseTimeout,
	}, a.logger)
	return srv.ListenAndServe(ctx, addr)
}

func (a *app) write(cmd *cobra.Command, v any) error {
	if err := output.WriteFile(a.outputPath, cmd.OutOrStdout(), v, a.pretty); err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return nil
}

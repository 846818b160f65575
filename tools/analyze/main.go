package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"pvinsight/internal/config"
	meteoapp "pvinsight/internal/meteo/application"
	meteo "pvinsight/internal/meteo/domain"
	prodapp "pvinsight/internal/production/application"
	"pvinsight/internal/reporting"
	"pvinsight/internal/runs"
)

type cli struct {
	Output string `help:"Root folder for run outputs." default:"${output_root}" type:"path"`
	Mode   string `help:"Output mode: runs keeps every run, latest overwrites." enum:"runs,latest" default:"${output_mode}"`

	TMY     tmyCmd     `cmd:"" name:"tmy" help:"Analyze one PVsyst TMY export."`
	Compare compareCmd `cmd:"" help:"Compare two PVsyst TMY exports."`
	Hourly  hourlyCmd  `cmd:"" help:"Analyze a PVsyst hourly results export."`
}

type tmyCmd struct {
	File       string `arg:"" type:"existingfile" help:"TMY CSV export."`
	NoResample bool   `help:"Keep sub-hourly time steps."`
	XLSX       bool   `name:"xlsx" help:"Also write the XLSX workbook."`
}

type compareCmd struct {
	First        string  `arg:"" type:"existingfile" help:"Reference TMY export (file 1)."`
	Second       string  `arg:"" type:"existingfile" help:"TMY export compared against file 1."`
	ThresholdPct float64 `name:"threshold-pct" default:"${threshold_pct}" help:"Mean difference (%) above which an alert is raised."`
}

type hourlyCmd struct {
	File        string  `arg:"" type:"existingfile" help:"Hourly results CSV export."`
	ThresholdKW float64 `name:"threshold-kw" default:"${threshold_kw}" help:"Grid power threshold in kW."`
}

// app carries what every command needs.
type app struct {
	cfg    config.Config
	root   string
	mode   string
	logger *log.Logger
	now    func() time.Time
	meteo  *meteoapp.Service
	prod   *prodapp.Service
}

func newParser(c *cli, cfg config.Config, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("analyze"),
		kong.Description("Offline PVsyst analyses writing reports into a run folder."),
		kong.UsageOnError(),
		kong.Vars{
			"output_root":   cfg.Output.Root,
			"output_mode":   cfg.Output.Mode,
			"threshold_pct": strconv.FormatFloat(cfg.Meteo.ThresholdPct, 'f', -1, 64),
			"threshold_kw":  strconv.FormatFloat(cfg.Production.ThresholdKW, 'f', -1, 64),
		},
	}, options...)
	return kong.New(c, options...)
}

func main() {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatalf("dotenv error: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	var c cli
	parser, err := newParser(&c, cfg)
	if err != nil {
		logger.Fatalf("cli error: %v", err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run(newApp(cfg, c, logger)))
}

func newApp(cfg config.Config, c cli, logger *log.Logger) *app {
	return &app{
		cfg:    cfg,
		root:   c.Output,
		mode:   c.Mode,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		meteo:  meteoapp.NewService(logger),
		prod:   prodapp.NewService(logger),
	}
}

func (c *tmyCmd) Run(a *app) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	name := filepath.Base(c.File)
	opts := a.cfg.MeteoOptions()
	if c.NoResample {
		opts.Normalize.ResampleHourlyIfSubhourly = false
	}

	res, err := a.meteo.AnalyzeTMY(context.Background(), data, name, opts)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", name, err)
	}
	now := a.now()
	run, err := runs.Create(a.root, runs.ToolTMYAnalysis, a.mode, now)
	if err != nil {
		return err
	}

	pdf, err := reporting.TMYPDF(res, now)
	if err != nil {
		return err
	}
	if _, err := runs.WriteFile(run.ReportsDir, runs.TMYReportName(name), pdf); err != nil {
		return err
	}
	if c.XLSX {
		book, err := reporting.TMYXLSX(res)
		if err != nil {
			return err
		}
		if _, err := runs.WriteFile(run.ReportsDir, runs.TMYWorkbookName(name), book); err != nil {
			return err
		}
	}

	ds := res.Dataset
	logPath, err := run.WriteLog(runs.TMYLogName(name), runs.Log{
		Tool:            runs.ToolTMYAnalysis,
		Sources:         []string{name},
		HeaderInfo:      ds.HeaderInfo,
		Units:           ds.Units,
		TimeStepMinutes: ds.TimeStepMinutes,
		Quality:         qualityLines(ds.Quality),
		Warnings:        res.Warnings,
	}, now)
	if err != nil {
		return err
	}
	a.logger.Printf("tmy: done run=%s log=%s warnings=%d", run.RunDir, logPath, len(res.Warnings))
	return nil
}

func (c *compareCmd) Run(a *app) error {
	data1, err := os.ReadFile(c.First)
	if err != nil {
		return err
	}
	data2, err := os.ReadFile(c.Second)
	if err != nil {
		return err
	}
	name1, name2 := filepath.Base(c.First), filepath.Base(c.Second)
	opts := a.cfg.MeteoOptions()
	opts.ThresholdPct = c.ThresholdPct

	res, err := a.meteo.CompareTMY(context.Background(), data1, name1, data2, name2, opts)
	if err != nil {
		return fmt.Errorf("compare %s vs %s: %w", name1, name2, err)
	}
	now := a.now()
	run, err := runs.Create(a.root, runs.ToolTMYCompare, a.mode, now)
	if err != nil {
		return err
	}
	pdf, err := reporting.ComparisonPDF(res, now)
	if err != nil {
		return err
	}
	if _, err := runs.WriteFile(run.ReportsDir, runs.ComparisonReportName(name1, name2), pdf); err != nil {
		return err
	}

	cmp := res.Comparison
	extra := map[string]string{
		"alert":         strconv.FormatBool(cmp.AlertFlag),
		"threshold_pct": strconv.FormatFloat(cmp.Threshold, 'f', -1, 64),
		"common_rows":   strconv.Itoa(cmp.Rows),
	}
	for _, v := range cmp.Variables {
		extra["mean_pct_"+v] = reporting.FormatPercent(cmp.Diffs[v].MeanPct)
	}
	_, err = run.WriteLog(runs.ComparisonLogName(name1, name2), runs.Log{
		Tool:            runs.ToolTMYCompare,
		Sources:         []string{name1, name2},
		Units:           res.First.Units,
		TimeStepMinutes: res.First.TimeStepMinutes,
		Quality:         append(qualityLines(res.First.Quality), qualityLines(res.Second.Quality)...),
		Warnings:        res.Warnings,
		Extra:           extra,
	}, now)
	if err != nil {
		return err
	}
	a.logger.Printf("compare: done run=%s alert=%t", run.RunDir, cmp.AlertFlag)
	return nil
}

func (c *hourlyCmd) Run(a *app) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	name := filepath.Base(c.File)
	opts := a.cfg.ProductionOptions()
	opts.Analysis.ThresholdKW = c.ThresholdKW

	actx, err := a.prod.AnalyzeHourly(context.Background(), data, name, opts)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", name, err)
	}
	now := a.now()
	run, err := runs.Create(a.root, runs.ToolHourly, a.mode, now)
	if err != nil {
		return err
	}
	if _, err := run.SaveInput(name, data); err != nil {
		a.logger.Printf("hourly: input copy failed run=%s error=%v", run.RunDir, err)
	}

	book, err := reporting.HourlyXLSX(actx)
	if err != nil {
		return err
	}
	if _, err := runs.WriteFile(run.ReportsDir, runs.HourlyWorkbookName, book); err != nil {
		return err
	}
	pdf, err := reporting.HourlyPDF(actx, now)
	if err != nil {
		return err
	}
	if _, err := runs.WriteFile(run.ReportsDir, runs.HourlyReportName, pdf); err != nil {
		return err
	}

	warnings := append([]string(nil), actx.Warnings...)
	extra := map[string]string{"threshold_kw": strconv.FormatFloat(actx.Options.ThresholdKW, 'f', -1, 64)}
	if th := actx.Results.Threshold; th != nil {
		extra["hours_production"] = strconv.Itoa(th.Summary.HoursProduction)
		extra["hours_above"] = strconv.Itoa(th.Summary.HoursAbove)
	}
	if clip := actx.Results.InverterClipping; clip != nil && !clip.Available {
		warnings = append(warnings, fmt.Sprintf("inverter clipping unavailable, missing %v", clip.MissingColumns))
	}
	_, err = run.WriteLog(runs.HourlyLogName, runs.Log{
		Tool:       runs.ToolHourly,
		Sources:    []string{name},
		HeaderInfo: actx.GeneralInfo,
		Units:      actx.UnitsMap,
		Warnings:   warnings,
		Extra:      extra,
	}, now)
	if err != nil {
		return err
	}
	a.logger.Printf("hourly: done run=%s rows=%d", run.RunDir, actx.Data.Len())
	return nil
}

func qualityLines(q meteo.DataQuality) []string {
	lines := []string{
		fmt.Sprintf("rows: %d", q.NRows),
		fmt.Sprintf("period: %s -> %s", q.Start.Format(time.RFC3339), q.End.Format(time.RFC3339)),
		fmt.Sprintf("missing values: %d", q.NNaN),
		fmt.Sprintf("invalid timestamps: %d", q.NNaT),
	}
	if q.Warning != "" {
		lines = append(lines, "warning: "+q.Warning)
	}
	return lines
}

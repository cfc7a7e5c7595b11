package pipeline

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/signaljob/internal/contracts"
	"github.com/wonny/signaljob/internal/dataset"
	"github.com/wonny/signaljob/internal/jobconfig"
	"github.com/wonny/signaljob/internal/report"
	"github.com/wonny/signaljob/internal/signals"
	"github.com/wonny/signaljob/pkg/logger"
)

// Stage names, in run order
const (
	StageConfig  = "config"
	StageDataset = "dataset"
	StageSignals = "signals"
	StageReport  = "report"
)

// RunConfig holds the paths for one run
type RunConfig struct {
	RunID      string // generated when empty
	InputPath  string
	ConfigPath string
	OutputPath string
}

// RunResult holds the outcome of a run
type RunResult struct {
	RunID           string
	Record          contracts.ResultRecord
	ExitCode        int
	Version         string // "" until the config loaded
	ConfigHash      string
	Summary         *contracts.DatasetSummary
	Signals         *signals.Result
	CompletedStages []string
	Error           error // first failure, nil on success
	Duration        time.Duration
}

// Job runs config → dataset → signals → report once.
// Every run ends with one result record, whatever stage failed.
type Job struct {
	config   RunConfig
	reporter *report.Reporter
	log      *logger.Logger // run-scoped, handed to the stages
	logger   *logger.Logger
	now      func() time.Time

	// Rand is seeded from the config seed once the config is loaded. It is
	// nil before that.
	Rand *rand.Rand
}

// NewJob creates a job that mirrors its result to stdout
func NewJob(cfg RunConfig, stdout io.Writer, log *logger.Logger) *Job {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	log = log.WithField("run_id", cfg.RunID)

	return &Job{
		config:   cfg,
		reporter: report.NewReporter(cfg.OutputPath, stdout, log),
		log:      log,
		logger:   log.WithField("component", "pipeline"),
		now:      time.Now,
	}
}

// NewRand returns the generator a job uses for the given seed
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// Run executes the job. The returned result always carries a record and
// its exit code; Error is set when a stage failed.
func (j *Job) Run(ctx context.Context) *RunResult {
	start := j.now()

	result := &RunResult{
		RunID:           j.config.RunID,
		CompletedStages: make([]string, 0, 4),
	}

	j.logger.WithFields(map[string]interface{}{
		"input":  j.config.InputPath,
		"config": j.config.ConfigPath,
		"output": j.config.OutputPath,
	}).Info("Job started")

	success, stage, err := j.run(ctx, result, start)
	if err != nil {
		j.fail(result, stage, err)
	} else {
		result.ExitCode = j.reporter.Emit(success)
		result.Record = success
		result.CompletedStages = append(result.CompletedStages, StageReport)
	}

	result.Duration = j.now().Sub(start)
	return result
}

func (j *Job) run(ctx context.Context, result *RunResult, start time.Time) (*contracts.SuccessRecord, string, error) {
	// Config
	cfg, _, err := jobconfig.Load(j.config.ConfigPath)
	if err != nil {
		return nil, StageConfig, err
	}
	result.Version = cfg.Version
	j.Rand = NewRand(cfg.Seed)

	hash, err := jobconfig.Hash(cfg)
	if err != nil {
		return nil, StageConfig, fmt.Errorf("hash config: %w", err)
	}
	result.ConfigHash = hash

	fields := cfg.Fields()
	fields["hash"] = hash
	j.logger.WithFields(fields).Info("Config validated")
	for _, w := range jobconfig.Warn(cfg) {
		j.logger.WithField("code", w.Code).Warn(w.Message)
	}
	result.CompletedStages = append(result.CompletedStages, StageConfig)

	if err := ctx.Err(); err != nil {
		return nil, StageDataset, err
	}

	// Dataset
	ds, err := dataset.Load(j.config.InputPath)
	if err != nil {
		return nil, StageDataset, err
	}
	closes, err := ds.Close()
	if err != nil {
		return nil, StageDataset, err
	}

	summary := ds.Summary(closes)
	result.Summary = &summary
	j.logger.WithFields(map[string]interface{}{
		"rows":          summary.Rows,
		"columns":       summary.Columns,
		"valid_close":   summary.ValidClose,
		"missing_close": summary.MissingClose,
		"coverage":      summary.CoverageRate(),
	}).Info("Rows loaded")
	if summary.MissingClose > 0 {
		j.logger.Warnf("%d of %d close values are missing or non-numeric", summary.MissingClose, summary.Rows)
	}
	result.CompletedStages = append(result.CompletedStages, StageDataset)

	if err := ctx.Err(); err != nil {
		return nil, StageSignals, err
	}

	// Signals
	engine := signals.NewEngine(cfg.Window, j.log.WithField("component", "signals"))
	computed, err := engine.Compute(closes)
	if err != nil {
		return nil, StageSignals, err
	}
	result.Signals = computed

	j.logger.WithFields(map[string]interface{}{
		"window":         engine.Window(),
		"rows_processed": computed.RowsProcessed,
		"valid_rows":     computed.ValidRows,
		"signal_rate":    computed.SignalRate,
	}).Info("Metrics computed")
	result.CompletedStages = append(result.CompletedStages, StageSignals)

	return j.reporter.Success(report.SuccessInput{
		Version:       cfg.Version,
		RowsProcessed: computed.RowsProcessed,
		SignalRate:    computed.SignalRate,
		Latency:       j.now().Sub(start),
		Seed:          cfg.Seed,
	}), "", nil
}

func (j *Job) fail(result *RunResult, stage string, err error) {
	j.logger.WithError(err).WithFields(map[string]interface{}{
		"stage": stage,
		"kind":  string(contracts.KindOf(err)),
	}).Error("Error occurred")

	record := j.reporter.Failure(result.Version, err)
	result.Error = err
	result.Record = record
	result.ExitCode = j.reporter.Emit(record)
}

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/wonny/signaljob/internal/contracts"
	"github.com/wonny/signaljob/pkg/logger"
)

// Reporter turns the outcome of a run into the result artifact.
// It writes the record to the output path, mirrors it to stdout and logs
// the outcome. Every run ends with exactly one Emit.
type Reporter struct {
	outputPath string
	stdout     io.Writer
	logger     *logger.Logger
}

// SuccessInput is what a completed run reports
type SuccessInput struct {
	Version       string
	RowsProcessed int
	SignalRate    float64
	Latency       time.Duration // measured from job start
	Seed          int64
}

// NewReporter creates a reporter writing to outputPath
func NewReporter(outputPath string, stdout io.Writer, log *logger.Logger) *Reporter {
	return &Reporter{
		outputPath: outputPath,
		stdout:     stdout,
		logger:     log.WithField("component", "report"),
	}
}

// Success builds the success record. Latency is truncated to whole
// milliseconds.
func (r *Reporter) Success(in SuccessInput) *contracts.SuccessRecord {
	return &contracts.SuccessRecord{
		Version:       in.Version,
		RowsProcessed: in.RowsProcessed,
		Metric:        contracts.MetricSignalRate,
		Value:         in.SignalRate,
		LatencyMS:     in.Latency.Milliseconds(),
		Seed:          in.Seed,
		Status:        contracts.StatusSuccess,
	}
}

// Failure builds the error record. An empty version means the config never
// produced one and is reported as contracts.DefaultVersion.
func (r *Reporter) Failure(version string, err error) *contracts.ErrorRecord {
	if version == "" {
		version = contracts.DefaultVersion
	}
	return &contracts.ErrorRecord{
		Version:      version,
		Status:       contracts.StatusError,
		ErrorMessage: err.Error(),
	}
}

// Emit writes record to the output path and stdout and returns the process
// exit code. When the artifact cannot be written the run is reported as
// failed on stdout and the exit code is 1, whatever record was given.
func (r *Reporter) Emit(record contracts.ResultRecord) int {
	data, err := Marshal(record)
	if err == nil {
		err = WriteFile(r.outputPath, data)
	}
	if err != nil {
		outErr := contracts.OutputError(fmt.Sprintf("write output: %v", err), err)
		r.logger.WithError(outErr).WithField("output", r.outputPath).Error("Failed to write result")

		fallback := record
		if success, ok := record.(*contracts.SuccessRecord); ok {
			fallback = r.Failure(success.Version, outErr)
		}
		if data, err := Marshal(fallback); err == nil {
			r.print(data)
		}
		return 1
	}

	r.print(data)
	r.logOutcome(record)
	return record.ExitCode()
}

// Marshal renders record as indented JSON followed by a newline
func Marshal(record contracts.ResultRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Reporter) print(data []byte) {
	if _, err := r.stdout.Write(data); err != nil {
		r.logger.WithError(err).Warn("Failed to mirror result to stdout")
	}
}

func (r *Reporter) logOutcome(record contracts.ResultRecord) {
	switch rec := record.(type) {
	case *contracts.SuccessRecord:
		r.logger.WithFields(map[string]interface{}{
			"version":        rec.Version,
			"rows_processed": rec.RowsProcessed,
			"value":          rec.Value,
			"latency_ms":     rec.LatencyMS,
			"seed":           rec.Seed,
		}).Info("Job completed successfully")
	case *contracts.ErrorRecord:
		r.logger.WithFields(map[string]interface{}{
			"version":       rec.Version,
			"error_message": rec.ErrorMessage,
		}).Error("Job failed")
	}
}

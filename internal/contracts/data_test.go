package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetSummary_CoverageRate(t *testing.T) {
	s := DatasetSummary{Rows: 4, ValidClose: 3, MissingClose: 1}
	assert.InDelta(t, 0.75, s.CoverageRate(), 1e-9)

	empty := DatasetSummary{}
	assert.Equal(t, 0.0, empty.CoverageRate())
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantMsg  string
	}{
		{"not found", NotFoundError("Config file not found", nil), KindNotFound, "Config file not found"},
		{"parse", ParseError("yaml: line 1: bad", errors.New("yaml")), KindParse, "yaml: line 1: bad"},
		{"missing field", MissingFieldError("window"), KindValidation, "Missing config field: window"},
		{"computation", ComputationError("no rows", ErrEmptyRateWindow), KindComputation, "no rows"},
		{"output", OutputError("write failed", nil), KindOutput, "write failed"},
		{"plain error", errors.New("boom"), "", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, KindOf(tt.err))
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("load dataset: %w", ValidationError("Input CSV is empty", ErrEmptyInput))

	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.False(t, errors.Is(err, ErrMissingColumn))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.True(t, errors.Is(MissingFieldError("seed"), ErrMissingField))
}

func TestSuccessRecordJSON(t *testing.T) {
	record := &SuccessRecord{
		Version:       "v2",
		RowsProcessed: 7,
		Metric:        MetricSignalRate,
		Value:         0.4,
		LatencyMS:     12,
		Seed:          42,
		Status:        StatusSuccess,
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	// key order follows field order
	want := `{"version":"v2","rows_processed":7,"metric":"signal_rate","value":0.4,"latency_ms":12,"seed":42,"status":"success"}`
	assert.Equal(t, want, string(data))
	assert.Equal(t, 0, record.ExitCode())
	assert.Equal(t, StatusSuccess, record.RecordStatus())
}

func TestErrorRecordJSON(t *testing.T) {
	record := &ErrorRecord{
		Version:      DefaultVersion,
		Status:       StatusError,
		ErrorMessage: "Missing config field: window",
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	want := `{"version":"v1","status":"error","error_message":"Missing config field: window"}`
	assert.Equal(t, want, string(data))
	assert.Equal(t, 1, record.ExitCode())
}

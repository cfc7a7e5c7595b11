package signals

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/wonny/signaljob/internal/contracts"
	"github.com/wonny/signaljob/pkg/logger"
)

// RatePlaces is the number of decimal places the signal rate is reported with
const RatePlaces = 4

// Result holds the derived series and the aggregate for one run.
// RollingMean and Signals have one entry per input row.
type Result struct {
	RollingMean   []float64 // NaN where the window is incomplete or holds a missing value
	Signals       []int     // 1 when close > rolling mean, else 0
	SignalRate    float64   // mean of Signals[window-1:], rounded to RatePlaces
	Positives     int       // count of 1 signals inside the rate window
	ValidRows     int       // rows inside the rate window
	RowsProcessed int       // all rows, including the warm-up rows
}

// Engine computes the rolling-mean crossover signal
type Engine struct {
	window int
	logger *logger.Logger
}

// NewEngine creates an engine for the given window length
func NewEngine(window int, log *logger.Logger) *Engine {
	return &Engine{
		window: window,
		logger: log,
	}
}

// Window returns the window length
func (e *Engine) Window() int {
	return e.window
}

// Compute derives the rolling mean, the signal series and the signal rate
// from closes, where NaN marks a missing value.
// It fails with KindComputation when no row falls inside the rate window.
func (e *Engine) Compute(closes []float64) (*Result, error) {
	if e.window < 1 {
		return nil, invalidWindowError(e.window)
	}

	e.logger.Info("Computing rolling mean")
	mean := e.RollingMean(closes)

	e.logger.Info("Generating signals")
	sig := Crossover(closes, mean)

	rate, positives, valid, err := e.Rate(sig)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RollingMean:   mean,
		Signals:       sig,
		SignalRate:    rate.InexactFloat64(),
		Positives:     positives,
		ValidRows:     valid,
		RowsProcessed: len(closes),
	}

	e.logger.WithFields(map[string]interface{}{
		"window":      e.window,
		"rows":        result.RowsProcessed,
		"valid_rows":  result.ValidRows,
		"positives":   result.Positives,
		"signal_rate": result.SignalRate,
	}).Debug("Calculated signal rate")

	return result, nil
}

// RollingMean returns the simple moving average of closes.
// Position i is defined only when i >= window-1 and every value in
// closes[i-window+1..i] is present. The first window-1 positions are always
// NaN, whatever the data holds.
func (e *Engine) RollingMean(closes []float64) []float64 {
	mean := make([]float64, len(closes))
	for i := range closes {
		mean[i] = math.NaN()
		if i < e.window-1 {
			continue
		}

		sum := 0.0
		complete := true
		for _, v := range closes[i-e.window+1 : i+1] {
			if math.IsNaN(v) {
				complete = false
				break
			}
			sum += v
		}
		if complete {
			mean[i] = sum / float64(e.window)
		}
	}
	return mean
}

// Crossover returns 1 where close is strictly above its rolling mean and 0
// elsewhere. An undefined mean (or close) compares as not-greater, so
// warm-up rows carry 0 rather than being dropped.
func Crossover(closes, mean []float64) []int {
	sig := make([]int, len(closes))
	for i := range closes {
		// NaN on either side makes the comparison false
		if closes[i] > mean[i] {
			sig[i] = 1
		}
	}
	return sig
}

// Rate averages the signals from position window-1 onward and rounds the
// float64 ratio to RatePlaces. Rounding works on the exact binary value of
// the ratio, so 1/20000 (stored just above 0.00005) rounds up to 0.0001;
// only values that are exact ties in binary round half-to-even.
func (e *Engine) Rate(sig []int) (rate decimal.Decimal, positives, valid int, err error) {
	if e.window < 1 {
		return decimal.Zero, 0, 0, invalidWindowError(e.window)
	}

	start := e.window - 1
	if start >= len(sig) {
		return decimal.Zero, 0, 0, contracts.ComputationError(
			fmt.Sprintf("window (%d) exceeds available rows (%d): no rows to compute signal_rate", e.window, len(sig)),
			contracts.ErrEmptyRateWindow,
		)
	}

	for _, s := range sig[start:] {
		positives += s
	}
	valid = len(sig) - start

	ratio := float64(positives) / float64(valid)
	rate, err = decimal.NewFromString(strconv.FormatFloat(ratio, 'f', RatePlaces, 64))
	if err != nil {
		return decimal.Zero, 0, 0, contracts.ComputationError(fmt.Sprintf("round signal_rate: %v", err), err)
	}

	return rate, positives, valid, nil
}

func invalidWindowError(window int) error {
	return contracts.ComputationError(
		fmt.Sprintf("window must be >= 1, got %d", window),
		contracts.ErrEmptyRateWindow,
	)
}

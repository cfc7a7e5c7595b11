package contracts

// DatasetSummary describes a loaded dataset, passed from the loader to the
// log trail.
type DatasetSummary struct {
	Rows         int      `json:"rows"`
	Columns      []string `json:"columns"`
	ValidClose   int      `json:"valid_close"`   // cells coerced to a number
	MissingClose int      `json:"missing_close"` // cells that failed coercion
}

// CoverageRate returns the share of close cells that are numeric
func (d *DatasetSummary) CoverageRate() float64 {
	if d.Rows == 0 {
		return 0.0
	}
	return float64(d.ValidClose) / float64(d.Rows)
}

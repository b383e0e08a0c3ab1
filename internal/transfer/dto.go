package transfer

// ImportResult reports the outcome of one bulk CSV import: how many rows
// landed, how many were skipped, and the row-level diagnostics. Message is
// display-ready with at most five diagnostics inlined.
type ImportResult struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

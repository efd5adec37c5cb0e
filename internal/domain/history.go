package domain

import "time"

// RunRecord is one persisted run invocation.
type RunRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Intent     string    `json:"intent"`
	Command    string    `json:"command"`
	Model      string    `json:"model"`
	Tier       RiskTier  `json:"tier"`
	Status     RunStatus `json:"status"`
	ExitCode   int       `json:"exit_code"`
	DurationMS int64     `json:"duration_ms"`
}

// Executed reports whether the command reached the shell.
func (r RunRecord) Executed() bool {
	return r.Status == RunExecuted
}

// NewRunRecord flattens a report into its persisted form.
func NewRunRecord(report RunReport, intent, model string) RunRecord {
	record := RunRecord{
		ID:        report.ID,
		Timestamp: report.StartedAt,
		Intent:    intent,
		Command:   report.Suggestion.Command,
		Model:     model,
		Tier:      report.Outcome.Tier,
		Status:    report.Status,
	}
	if report.Result != nil {
		record.ExitCode = report.Result.ExitCode
		record.DurationMS = report.Result.Duration.Milliseconds()
	}
	return record
}

// CatalogEntry is a cached copy of the remote model catalog.
type CatalogEntry struct {
	Key       string      `json:"key"`
	Models    []ModelInfo `json:"models"`
	CreatedAt time.Time   `json:"created_at"`
}

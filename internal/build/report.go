package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// ReportFile is the name of the build report inside the build folder.
const ReportFile = "build-report.json"

// Status represents the outcome of a build.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsSuccess returns true if the build completed successfully.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// PageReport describes one written page.
type PageReport struct {
	URL  string `json:"url"`
	File string `json:"file"`
	// Fingerprint of the written HTML.
	Fingerprint string `json:"fingerprint"`
}

// Report contains the outcome of a build.
type Report struct {
	BuildID   string        `json:"build_id"`
	Status    Status        `json:"status"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	Pages       []PageReport `json:"pages"`
	StaticFiles int          `json:"static_files"`
	// Materialized lists static URLs copied from the file resolver.
	Materialized []string `json:"materialized,omitempty"`
	// Missing lists static URLs that could not be resolved.
	Missing []string `json:"missing,omitempty"`
	Search  []string `json:"search,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (r *Report) finish(status Status, err error) {
	r.Status = status
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	if err != nil {
		r.Error = err.Error()
	}
}

// Write stores the report as indented JSON in dir.
func (r *Report) Write(dir string) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to encode build report").Build()
	}
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // public build output
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to write build report").
			WithContext("path", path).
			Build()
	}
	return path, nil
}

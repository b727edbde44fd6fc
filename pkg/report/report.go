/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Run reports. Summarises a pipeline run (input, detected layout, how each column
was resolved, record count, warnings) and writes it as a timestamped JSON file.
*/

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kleascm/mimicry/pkg/knowledge"
	"github.com/kleascm/mimicry/pkg/patterns"
	"github.com/kleascm/mimicry/pkg/pipeline"
	"github.com/kleascm/mimicry/pkg/resolver"
)

// ColumnReport describes one output column
type ColumnReport struct {
	resolver.Resolution
	Patterns []patterns.Tag `json:"patterns"`
	Unique   bool           `json:"unique"`
}

// RunReport is the persisted summary of one run
type RunReport struct {
	Input     string         `json:"input"`
	Output    string         `json:"output,omitempty"`
	Delimiter string         `json:"delimiter"`
	HasHeader bool           `json:"has_header"`
	Columns   []ColumnReport `json:"columns"`
	Records   int            `json:"records"`
	Seed      uint64         `json:"seed"`
	KBPath    string         `json:"kb_path"`
	KBReset   bool           `json:"kb_reset"`
	Warnings  []string       `json:"warnings"`
	CreatedAt time.Time      `json:"created_at"`
}

// FromResult builds a report from a pipeline result. kb supplies the learned patterns and may be nil.
func FromResult(res *pipeline.Result, kb *knowledge.KnowledgeBase, kbPath, output string) *RunReport {
	r := &RunReport{
		Input:     res.Input,
		Output:    output,
		Delimiter: res.Delimiter.String(),
		HasHeader: res.HasHeader,
		Columns:   make([]ColumnReport, 0, len(res.Resolutions)),
		Records:   len(res.Records),
		Seed:      res.Seed,
		KBPath:    kbPath,
		KBReset:   res.KBReset,
		Warnings:  append([]string{}, res.Warnings...),
		CreatedAt: time.Now(),
	}
	for _, rs := range res.Resolutions {
		col := ColumnReport{Resolution: rs}
		if kb != nil {
			if e, ok := kb.Get(rs.Canonical); ok {
				col.Patterns = e.Patterns
				col.Unique = e.Unique
			}
		}
		r.Columns = append(r.Columns, col)
	}
	return r
}

// WriteRunReport writes the report under dir and returns the file path
func WriteRunReport(dir string, r *RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	// 2024-06-11_01-30-00_customers.json
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	base := strings.TrimSuffix(filepath.Base(r.Input), filepath.Ext(r.Input))
	filename := fmt.Sprintf("%s_%s.json", created.Format("2006-01-02_15-04-05"), base)
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}

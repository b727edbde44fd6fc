/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report_test.go
Description: Tests for run report assembly and persistence.
*/

package report_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kleascm/mimicry/pkg/generator"
	"github.com/kleascm/mimicry/pkg/knowledge"
	"github.com/kleascm/mimicry/pkg/patterns"
	"github.com/kleascm/mimicry/pkg/pipeline"
	"github.com/kleascm/mimicry/pkg/report"
	"github.com/kleascm/mimicry/pkg/resolver"
	"github.com/kleascm/mimicry/pkg/tokenizer"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRunReport(t *testing.T) {
	logger, _ := test.NewNullLogger()
	kb := knowledge.New(filepath.Join(t.TempDir(), "kb.json"), knowledge.Options{Logger: logger})
	kb.UpdateStatistics("age", []string{"30", "45"})

	res := &pipeline.Result{
		Input:     "/data/customers.csv",
		Columns:   []string{"age"},
		Records:   []generator.Record{{"age": int64(31)}, {"age": int64(40)}},
		Delimiter: tokenizer.Comma,
		HasHeader: true,
		Resolutions: []resolver.Resolution{
			{Index: 0, Raw: "Age", Canonical: "age", Tier: resolver.TierHeader, Score: 1},
		},
		Warnings: []string{"labeler failed"},
		Seed:     7,
	}

	r := report.FromResult(res, kb, kb.Path(), "out.csv")
	r.CreatedAt = time.Date(2024, 6, 11, 1, 30, 0, 0, time.UTC)

	dir := filepath.Join(t.TempDir(), "reports")
	path, err := report.WriteRunReport(dir, r)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-11_01-30-00_customers.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got report.RunReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, ",", got.Delimiter)
	assert.Equal(t, 2, got.Records)
	require.Len(t, got.Columns, 1)
	assert.Equal(t, "age", got.Columns[0].Canonical)
	assert.Equal(t, resolver.TierHeader, got.Columns[0].Tier)
	assert.Equal(t, []patterns.Tag{patterns.TagInteger}, got.Columns[0].Patterns)
	assert.True(t, got.Columns[0].Unique)
	assert.Equal(t, []string{"labeler failed"}, got.Warnings)
}

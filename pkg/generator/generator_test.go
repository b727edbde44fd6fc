/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generator_test.go
Description: Tests for strategy selection and value synthesis.
*/

package generator_test

import (
	"math"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/kleascm/mimicry/pkg/generator"
	"github.com/kleascm/mimicry/pkg/knowledge"
	"github.com/kleascm/mimicry/pkg/patterns"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKB(t *testing.T) *knowledge.KnowledgeBase {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return knowledge.New(filepath.Join(t.TempDir(), "kb.json"), knowledge.Options{Logger: logger})
}

func newGenerator(kb *knowledge.KnowledgeBase, seed uint64) *generator.Generator {
	logger, _ := test.NewNullLogger()
	return generator.New(kb, generator.Options{Seed: seed, Logger: logger})
}

func column(records []generator.Record, name string) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r[name]
	}
	return out
}

func TestUniqueIntegerCountsFromMin(t *testing.T) {
	kb := newKB(t)
	kb.UpdateStatistics("id", []string{"1000", "1500", "2000"})

	e, _ := kb.Get("id")
	require.True(t, e.Unique)
	assert.Equal(t, generator.StrategyUniqueInteger, generator.StrategyFor(e))

	records := newGenerator(kb, 1).Generate([]string{"id"}, 5)
	assert.Equal(t, []any{int64(1000), int64(1001), int64(1002), int64(1003), int64(1004)}, column(records, "id"))
}

func TestUniqueTextTokensAreDistinct(t *testing.T) {
	kb := newKB(t)
	kb.UpdateStatistics("name", []string{"Alice", "Bob"})

	records := newGenerator(kb, 7).Generate([]string{"name"}, 200)
	seen := make(map[any]bool)
	for _, v := range column(records, "name") {
		assert.False(t, seen[v], "duplicate %v", v)
		seen[v] = true
		assert.NotEqual(t, "Alice", v)
	}
}

func TestIntegerWithinRange(t *testing.T) {
	kb := newKB(t)
	kb.UpdateStatistics("age", []string{"30", "45", "30"})

	for _, v := range column(newGenerator(kb, 3).Generate([]string{"age"}, 100), "age") {
		n, ok := v.(int64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, n, int64(30))
		assert.LessOrEqual(t, n, int64(45))
	}
}

func TestFloatIsRoundedToCents(t *testing.T) {
	kb := newKB(t)
	kb.UpdateStatistics("price", []string{"10.5", "12.25", "10.5"})

	for _, v := range column(newGenerator(kb, 3).Generate([]string{"price"}, 50), "price") {
		f, ok := v.(float64)
		require.True(t, ok)
		assert.InDelta(t, math.Round(f*100), f*100, 1e-6)
	}
}

func TestBooleanAndDate(t *testing.T) {
	kb := newKB(t)
	kb.UpdateStatistics("active", []string{"Y", "N", "Y"})
	kb.UpdateStatistics("opened", []string{"2024-01-01", "2024-01-01"})

	dateRe := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	for _, r := range newGenerator(kb, 5).Generate([]string{"active", "opened"}, 30) {
		assert.Contains(t, []any{"Yes", "No"}, r["active"])
		assert.Regexp(t, dateRe, r["opened"])
	}
}

func TestEmpiricalSamplesKnownValues(t *testing.T) {
	kb := newKB(t)
	kb.UpdateStatistics("city", []string{"Pune", "Pune", "Delhi", "Mumbai Central"})

	e, _ := kb.Get("city")
	require.Equal(t, []patterns.Tag{patterns.TagCategorical}, e.Patterns)
	assert.Equal(t, generator.StrategyEmpirical, generator.StrategyFor(e))

	counts := map[any]int{}
	for _, v := range column(newGenerator(kb, 11).Generate([]string{"city"}, 400), "city") {
		counts[v]++
	}
	assert.Len(t, counts, 3)
	assert.Greater(t, counts["Pune"], counts["Delhi"])
}

func TestRefinementsTakePrecedence(t *testing.T) {
	kb := newKB(t)
	kb.UpdateStatistics("account", []string{"123456789012", "123456789012"})
	kb.UpdateStatistics("amount", []string{"1,200.50", "300.00", "1,200.50"})
	kb.UpdateStatistics("txn", []string{"AB12CD34", "AB12CD34"})
	kb.UpdateStatistics("branch", []string{"MUMBAI MN", "MUMBAI MN"})

	e, _ := kb.Get("account")
	assert.Equal(t, generator.StrategyLongNumericID, generator.StrategyFor(e))

	rec := newGenerator(kb, 9).Generate([]string{"account", "amount", "txn", "branch"}, 20)
	for _, r := range rec {
		assert.Regexp(t, `^[1-9]\d{11}$`, r["account"])
		assert.Regexp(t, `^\d{1,3}(,\d{3})*\.\d{2}$`, r["amount"])
		assert.Regexp(t, `^[A-Z]{2}\d{2}[A-Z]{2}\d{2}$`, r["txn"])
		assert.Regexp(t, `^[A-Z]{4} [A-Z]{2}$`, r["branch"])
	}
}

func TestUniqueRefinedValuesAreDistinct(t *testing.T) {
	kb := newKB(t)
	kb.UpdateStatistics("txn", []string{"AB12CD34", "ZZ99YY88"})

	e, _ := kb.Get("txn")
	require.True(t, e.Unique)
	assert.Equal(t, generator.StrategyAlphanumericCode, generator.StrategyFor(e))

	seen := map[any]bool{}
	for _, v := range column(newGenerator(kb, 2).Generate([]string{"txn"}, 100), "txn") {
		assert.False(t, seen[v])
		seen[v] = true
	}
}

func TestFallbackIsTotal(t *testing.T) {
	kb := newKB(t)
	kb.AddColumn("mystery")

	e, _ := kb.Get("mystery")
	assert.Equal(t, generator.StrategyFiller, generator.StrategyFor(e))
	assert.Equal(t, generator.StrategyFiller, generator.StrategyFor(nil))

	g := newGenerator(kb, 4)
	for _, name := range []string{"mystery", "never_seen"} {
		v := g.Value(name)
		require.NotNil(t, v)
		assert.NotEmpty(t, v)
	}
	assert.Empty(t, g.Generate([]string{"mystery"}, 0))
}

func TestSameSeedSameRecords(t *testing.T) {
	kb := newKB(t)
	kb.UpdateStatistics("age", []string{"30", "45", "30"})
	kb.UpdateStatistics("name", []string{"Alice", "Bob"})

	cols := []string{"age", "name"}
	a := newGenerator(kb, 42).Generate(cols, 10)
	b := newGenerator(kb, 42).Generate(cols, 10)
	assert.Equal(t, a, b)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.50", generator.FormatMoney(0.5))
	assert.Equal(t, "999.99", generator.FormatMoney(999.99))
	assert.Equal(t, "1,000.00", generator.FormatMoney(1000))
	assert.Equal(t, "1,234,567.89", generator.FormatMoney(1234567.891))
	assert.Equal(t, "-12,345.60", generator.FormatMoney(-12345.6))
}

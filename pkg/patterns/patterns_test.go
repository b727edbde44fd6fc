/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: patterns_test.go
Description: Tests for the pattern engine. Covers base classification order, refinements,
blank handling, order independence, and numeric parsing.
*/

package patterns_test

import (
	"fmt"
	"testing"

	"github.com/kleascm/mimicry/pkg/patterns"
	"github.com/stretchr/testify/assert"
)

func TestInferBaseClassification(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		want   []patterns.Tag
	}{
		{"empty sample", nil, []patterns.Tag{patterns.TagText}},
		{"only blanks", []string{"", "  "}, []patterns.Tag{patterns.TagText}},
		{"integers", []string{"30", "45", "-2"}, []patterns.Tag{patterns.TagInteger}},
		{"floats", []string{"30.5", "45", "1,25"}, []patterns.Tag{patterns.TagFloat}},
		{"dates", []string{"2024-01-02", "2023/12/31"}, []patterns.Tag{patterns.TagDate}},
		{"booleans", []string{"Y", "n", "TRUE", "no"}, []patterns.Tag{patterns.TagBoolean}},
		{"categorical", []string{"red", "green", "red", "light blue"}, []patterns.Tag{patterns.TagCategorical}},
		{"long text is not categorical", []string{"one two three four five six seven"}, []patterns.Tag{patterns.TagText}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, patterns.Infer(tc.values))
		})
	}
}

func TestInferHighCardinalityIsText(t *testing.T) {
	values := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		values = append(values, fmt.Sprintf("value %c", 'a'+i))
	}
	assert.Equal(t, []patterns.Tag{patterns.TagText}, patterns.Infer(values))
}

func TestInferIgnoresBlankValues(t *testing.T) {
	assert.Equal(t, []patterns.Tag{patterns.TagInteger}, patterns.Infer([]string{"1", "", " 2 ", "   "}))
}

func TestInferRefinements(t *testing.T) {
	ids := patterns.Infer([]string{"123456789012", "98765432109876"})
	assert.Equal(t, []patterns.Tag{patterns.TagInteger, patterns.TagLongNumericID}, ids)

	money := patterns.Infer([]string{"1,234.56", "99.10", "12,000.00"})
	assert.Contains(t, money, patterns.TagMoney)
	assert.Equal(t, patterns.TagCategorical, money[0])

	codes := patterns.Infer([]string{"TX9A77", "AB12CD", "Z9Z9"})
	assert.Contains(t, codes, patterns.TagAlphanumericCode)

	branches := patterns.Infer([]string{"MAIN ST", "NORTHWAY", "DOWNTOWN NY"})
	assert.Contains(t, branches, patterns.TagTextCode)
	assert.NotContains(t, branches, patterns.TagAlphanumericCode)
}

func TestInferTwoDecimalFloatIsNotMoney(t *testing.T) {
	tags := patterns.Infer([]string{"10.50", "99.99"})
	assert.Equal(t, []patterns.Tag{patterns.TagFloat}, tags)
}

func TestInferIsOrderIndependent(t *testing.T) {
	a := []string{"red", "12", "blue", "green"}
	b := []string{"green", "blue", "12", "red"}
	assert.Equal(t, patterns.Infer(a), patterns.Infer(b))

	c := []string{"1", "2.5", "3"}
	d := []string{"3", "1", "2.5"}
	assert.Equal(t, patterns.Infer(c), patterns.Infer(d))
}

func TestInferIsDeterministic(t *testing.T) {
	values := []string{"A1B2", "C3D4", "E5F6"}
	first := patterns.Infer(values)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, patterns.Infer(values))
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"42":        42,
		"-7":        -7,
		"3.25":      3.25,
		"3,25":      3.25,
		"1,234.56":  1234.56,
		"1.2345.67": 12345.67,
	}
	for in, want := range cases {
		got, ok := patterns.ParseNumber(in)
		assert.True(t, ok, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}

	_, ok := patterns.ParseNumber("abc")
	assert.False(t, ok)
}

func TestTagHelpers(t *testing.T) {
	assert.True(t, patterns.TagMoney.IsNumeric())
	assert.True(t, patterns.TagMoney.IsRefinement())
	assert.False(t, patterns.TagText.IsNumeric())
	assert.True(t, patterns.HasNumeric([]patterns.Tag{patterns.TagText, patterns.TagFloat}))

	u := patterns.Union([]patterns.Tag{patterns.TagInteger}, []patterns.Tag{patterns.TagFloat, patterns.TagInteger})
	assert.Equal(t, []patterns.Tag{patterns.TagInteger, patterns.TagFloat}, u)

	assert.Equal(t, patterns.TagInteger, patterns.ParseTag("int"))
	assert.Equal(t, patterns.TagCategorical, patterns.ParseTag("enum"))
	assert.Equal(t, patterns.Tag("custom"), patterns.ParseTag("custom"))
}

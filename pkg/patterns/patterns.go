/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: patterns.go
Description: Pattern engine for column value classification. Classifies a sample of raw
string values into a base pattern (integer, float, date, boolean, categorical, text) and
layers domain refinements (long numeric ids, money, alphanumeric and text codes) on top.
*/

package patterns

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Tag identifies the value shape of a column
type Tag string

const (
	TagInteger     Tag = "integer"
	TagFloat       Tag = "float"
	TagDate        Tag = "date"
	TagBoolean     Tag = "boolean"
	TagCategorical Tag = "categorical"
	TagText        Tag = "text"

	// Refinements, layered after the base classification
	TagLongNumericID    Tag = "long_numeric_id"
	TagMoney            Tag = "money"
	TagAlphanumericCode Tag = "alphanumeric_code"
	TagTextCode         Tag = "text_code"
)

const (
	// CategoricalMaxDistinct is the exclusive upper bound on distinct values for a categorical sample
	CategoricalMaxDistinct = 20
	// CategoricalMaxTokens is the maximum number of whitespace tokens per categorical value
	CategoricalMaxTokens = 6
)

var (
	integerRe     = regexp.MustCompile(`^-?\d+$`)
	floatRe       = regexp.MustCompile(`^-?\d+[.,]?\d*$`)
	dateRe        = regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}`)
	longIDRe      = regexp.MustCompile(`^\d{12,20}$`)
	moneyRe       = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*\.\d{2}$`)
	legacyMoneyRe = regexp.MustCompile(`^\d{1,3}\.\d{3,5}\.\d{2}$`)
	alnumCodeRe   = regexp.MustCompile(`^[A-Z0-9]{4,10}$`)
	textCodeRe    = regexp.MustCompile(`^[A-Z]{4,10}( [A-Z]{2,5})?$`)
)

var booleanTokens = map[string]bool{
	"yes": true, "no": true, "true": true, "false": true, "y": true, "n": true,
}

// legacyTags maps tag names written by older knowledge bases onto current tags
var legacyTags = map[string]Tag{
	"int":          TagInteger,
	"iso_date":     TagDate,
	"enum":         TagCategorical,
	"alphanumeric": TagAlphanumericCode,
}

// ParseTag converts a persisted tag name into a Tag. Unknown names are kept verbatim
// so that they survive a load/save cycle; the generator treats them as having no strategy.
func ParseTag(name string) Tag {
	if t, ok := legacyTags[name]; ok {
		return t
	}
	return Tag(name)
}

// Infer classifies a sample of raw values. Blank values are discarded first and an
// empty sample yields {text}. The result is the base tag followed by any refinements.
func Infer(values []string) []Tag {
	clean := Clean(values)
	if len(clean) == 0 {
		return []Tag{TagText}
	}

	base := classify(clean)
	tags := []Tag{base}
	return append(tags, refine(base, clean)...)
}

// Clean trims values and drops blanks
func Clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// classify applies the base rules in order; the first whole-sample match wins
func classify(values []string) Tag {
	switch {
	case all(values, integerRe.MatchString):
		return TagInteger
	case all(values, floatRe.MatchString):
		return TagFloat
	case all(values, dateRe.MatchString):
		return TagDate
	case all(values, func(v string) bool { return booleanTokens[strings.ToLower(v)] }):
		return TagBoolean
	case isCategorical(values):
		return TagCategorical
	default:
		return TagText
	}
}

func isCategorical(values []string) bool {
	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		if len(strings.Fields(v)) > CategoricalMaxTokens {
			return false
		}
		distinct[v] = struct{}{}
	}
	return len(distinct) < CategoricalMaxDistinct
}

func refine(base Tag, values []string) []Tag {
	var refined []Tag

	if base == TagInteger && all(values, longIDRe.MatchString) {
		refined = append(refined, TagLongNumericID)
	}
	if isMoney(values) {
		refined = append(refined, TagMoney)
	}
	if base != TagInteger && all(values, isAlphanumericCode) {
		refined = append(refined, TagAlphanumericCode)
	}
	if all(values, textCodeRe.MatchString) {
		refined = append(refined, TagTextCode)
	}

	return refined
}

// isMoney requires every value to be currency shaped and at least one value to carry a
// thousands separator, so plain two-decimal floats stay floats.
func isMoney(values []string) bool {
	separated := false
	for _, v := range values {
		switch {
		case legacyMoneyRe.MatchString(v):
			separated = true
		case moneyRe.MatchString(v):
			if strings.Contains(v, ",") {
				separated = true
			}
		default:
			return false
		}
	}
	return separated
}

func isAlphanumericCode(v string) bool {
	if !alnumCodeRe.MatchString(v) {
		return false
	}
	hasLetter := strings.IndexFunc(v, unicode.IsLetter) >= 0
	hasDigit := strings.IndexFunc(v, unicode.IsDigit) >= 0
	return hasLetter && hasDigit
}

func all(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

// IsRefinement reports whether the tag is a domain refinement rather than a base tag
func (t Tag) IsRefinement() bool {
	switch t {
	case TagLongNumericID, TagMoney, TagAlphanumericCode, TagTextCode:
		return true
	}
	return false
}

// IsNumeric reports whether numeric statistics apply to the tag
func (t Tag) IsNumeric() bool {
	switch t {
	case TagInteger, TagFloat, TagLongNumericID, TagMoney:
		return true
	}
	return false
}

// HasNumeric reports whether any tag in the set is numeric
func HasNumeric(tags []Tag) bool {
	for _, t := range tags {
		if t.IsNumeric() {
			return true
		}
	}
	return false
}

// Contains reports whether tags includes t
func Contains(tags []Tag, t Tag) bool {
	for _, x := range tags {
		if x == t {
			return true
		}
	}
	return false
}

// Union appends the tags of b missing from a, preserving the order of first appearance
func Union(a, b []Tag) []Tag {
	out := make([]Tag, 0, len(a)+len(b))
	for _, t := range a {
		if !Contains(out, t) {
			out = append(out, t)
		}
	}
	for _, t := range b {
		if !Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// ParseNumber parses a raw value as a number, accepting decimal commas and
// thousands-separated money. Values that no numeric rule accepts are rejected.
func ParseNumber(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	switch {
	case integerRe.MatchString(v):
	case moneyRe.MatchString(v):
		v = strings.ReplaceAll(v, ",", "")
	case legacyMoneyRe.MatchString(v):
		v = strings.Replace(v, ".", "", 1)
	case floatRe.MatchString(v):
		v = strings.Replace(v, ",", ".", 1)
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

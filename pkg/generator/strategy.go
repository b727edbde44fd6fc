/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: strategy.go
Description: Generation strategy selection. Maps what the knowledge base knows about a column
onto exactly one strategy, with an explicit filler branch for columns nothing else applies to.
*/

package generator

import (
	"github.com/kleascm/mimicry/pkg/knowledge"
	"github.com/kleascm/mimicry/pkg/patterns"
)

// Strategy is the value synthesis rule chosen for a column
type Strategy int

const (
	StrategyFiller Strategy = iota
	StrategyUniqueInteger
	StrategyUniqueToken
	StrategyLongNumericID
	StrategyMoney
	StrategyAlphanumericCode
	StrategyTextCode
	StrategyInteger
	StrategyFloat
	StrategyDate
	StrategyBoolean
	StrategyEmpirical
)

var strategyNames = map[Strategy]string{
	StrategyFiller:           "filler",
	StrategyUniqueInteger:    "unique_integer",
	StrategyUniqueToken:      "unique_token",
	StrategyLongNumericID:    "long_numeric_id",
	StrategyMoney:            "money",
	StrategyAlphanumericCode: "alphanumeric_code",
	StrategyTextCode:         "text_code",
	StrategyInteger:          "integer",
	StrategyFloat:            "float",
	StrategyDate:             "date",
	StrategyBoolean:          "boolean",
	StrategyEmpirical:        "empirical",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Strategy) refined() bool {
	for _, r := range refinements {
		if r.strategy == s {
			return true
		}
	}
	return false
}

// refinements in precedence order, with their strategies
var refinements = []struct {
	tag      patterns.Tag
	strategy Strategy
}{
	{patterns.TagLongNumericID, StrategyLongNumericID},
	{patterns.TagMoney, StrategyMoney},
	{patterns.TagAlphanumericCode, StrategyAlphanumericCode},
	{patterns.TagTextCode, StrategyTextCode},
}

// StrategyFor picks the strategy for an entry. A nil entry gets the filler.
//
// Unique integer columns count up from their minimum. Otherwise a refined pattern wins over
// base patterns; a unique column with a refinement keeps the refined shape and is deduplicated
// by the generator. Unique text and categorical columns get opaque tokens.
func StrategyFor(e *knowledge.ColumnEntry) Strategy {
	if e == nil {
		return StrategyFiller
	}

	if e.Unique && e.HasPattern(patterns.TagInteger) {
		return StrategyUniqueInteger
	}

	for _, r := range refinements {
		if e.HasPattern(r.tag) {
			return r.strategy
		}
	}

	if e.Unique && (e.HasPattern(patterns.TagText) || e.HasPattern(patterns.TagCategorical)) {
		return StrategyUniqueToken
	}

	switch {
	case e.HasPattern(patterns.TagInteger):
		return StrategyInteger
	case e.HasPattern(patterns.TagFloat):
		return StrategyFloat
	case e.HasPattern(patterns.TagDate):
		return StrategyDate
	case e.HasPattern(patterns.TagBoolean):
		return StrategyBoolean
	case len(e.Values) > 0:
		return StrategyEmpirical
	default:
		return StrategyFiller
	}
}

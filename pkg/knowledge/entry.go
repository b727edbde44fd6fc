/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: entry.go
Description: ColumnEntry, the unit of the knowledge base. Holds a canonical column's
aliases, inferred patterns, bounded value-frequency table, numeric statistics and
uniqueness flag, along with the statistics update rules.
*/

package knowledge

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kleascm/mimicry/pkg/patterns"
)

// Stats holds numeric statistics for a column
type Stats struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	MaxLength int     `json:"max_length"` // Digits in the integer part of the widest value
}

// ColumnEntry is everything the knowledge base remembers about one canonical column
type ColumnEntry struct {
	Name     string         // Canonical name, stable once created
	Aliases  []string       // Raw names that resolved here, canonical name included
	Patterns []patterns.Tag // Ordered set of inferred patterns
	Values   map[string]int // Observed value -> count, bounded to the top-K
	Stats    *Stats         // Present only when a numeric pattern applies
	Unique   bool           // Every value of the last learned sample was distinct
}

// ValueCount is one row of a frequency table
type ValueCount struct {
	Value string
	Count int
}

func newEntry(name string) *ColumnEntry {
	return &ColumnEntry{
		Name:    name,
		Aliases: []string{name},
		Values:  make(map[string]int),
	}
}

// Names returns the canonical name followed by every alias not equal to it
func (e *ColumnEntry) Names() []string {
	names := []string{e.Name}
	for _, a := range e.Aliases {
		if a != e.Name {
			names = append(names, a)
		}
	}
	return names
}

// HasName reports whether name equals the canonical name or an alias, ignoring case
func (e *ColumnEntry) HasName(name string) bool {
	for _, n := range e.Names() {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func (e *ColumnEntry) addAlias(alias string) {
	for _, a := range e.Aliases {
		if a == alias {
			return
		}
	}
	e.Aliases = append(e.Aliases, alias)
}

// HasPattern reports whether the entry carries the tag
func (e *ColumnEntry) HasPattern(t patterns.Tag) bool {
	return patterns.Contains(e.Patterns, t)
}

// TopValues returns up to k values ordered by descending count, ties by value.
// k <= 0 returns the whole table.
func (e *ColumnEntry) TopValues(k int) []ValueCount {
	out := make([]ValueCount, 0, len(e.Values))
	for v, c := range e.Values {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// learn folds a new sample into the entry. Patterns are unioned, frequencies are added
// and pruned to topK, uniqueness is recomputed from this sample alone, and numeric
// statistics are recomputed from the sample's numeric-parseable values.
func (e *ColumnEntry) learn(values []string, topK int) {
	clean := patterns.Clean(values)

	e.Patterns = patterns.Union(e.Patterns, patterns.Infer(clean))

	distinct := make(map[string]struct{}, len(clean))
	for _, v := range clean {
		e.Values[v]++
		distinct[v] = struct{}{}
	}
	e.prune(topK)

	e.Unique = len(clean) > 1 && len(distinct) == len(clean)

	if patterns.HasNumeric(e.Patterns) {
		if s := computeStats(clean); s != nil {
			e.Stats = s
		}
	}
}

func (e *ColumnEntry) prune(topK int) {
	if topK <= 0 || len(e.Values) <= topK {
		return
	}
	kept := make(map[string]int, topK)
	for _, vc := range e.TopValues(topK) {
		kept[vc.Value] = vc.Count
	}
	e.Values = kept
}

// computeStats returns nil when no value parses as a number
func computeStats(values []string) *Stats {
	var nums []float64
	for _, v := range values {
		if f, ok := patterns.ParseNumber(v); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return nil
	}

	s := &Stats{Min: nums[0], Max: nums[0]}
	sum := 0.0
	for _, n := range nums {
		s.Min = math.Min(s.Min, n)
		s.Max = math.Max(s.Max, n)
		sum += n
		if l := digitLength(n); l > s.MaxLength {
			s.MaxLength = l
		}
	}
	s.Mean = sum / float64(len(nums))

	if len(nums) > 1 {
		sq := 0.0
		for _, n := range nums {
			d := n - s.Mean
			sq += d * d
		}
		s.Std = math.Sqrt(sq / float64(len(nums)-1))
	}
	return s
}

func digitLength(f float64) int {
	return len(strconv.FormatFloat(math.Trunc(math.Abs(f)), 'f', 0, 64))
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: resolver.go
Description: Column resolver. Maps each input column to a canonical knowledge base entry,
either from its declared header name or, for headerless input, by combining semantic labeler
suggestions with value-set and alias matching against what the knowledge base already knows.
Every resolved column is learned immediately so later columns see an up to date knowledge base.
*/

package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/kleascm/mimicry/pkg/knowledge"
	"github.com/kleascm/mimicry/pkg/labeler"
	"github.com/kleascm/mimicry/pkg/patterns"
	"github.com/kleascm/mimicry/pkg/similarity"
	"github.com/sirupsen/logrus"
)

// Tier names the rule that produced a canonical name
type Tier string

const (
	TierHeader     Tier = "header"     // Declared header name through alias matching
	TierValue      Tier = "value"      // Sample values matched a known value set
	TierAlias      Tier = "alias"      // Suggested name matched a known name or alias
	TierSuggestion Tier = "suggestion" // Suggested name accepted as a new canonical name
)

// ParseTier converts a configured tier name
func ParseTier(name string) (Tier, error) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(name))); t {
	case TierValue, TierAlias:
		return t, nil
	default:
		return "", fmt.Errorf("unknown resolver tier: %s", name)
	}
}

// Options tunes headerless resolution
type Options struct {
	AliasThreshold float64 // Minimum name similarity for the alias tier
	ValueThreshold float64 // Minimum value-set similarity for the value tier
	Tiers          []Tier  // Matching tiers in order; accepting the suggestion always runs last
	SampleRows     int     // Rows sent to the labeler and compared in the value tier
	ValueSample    int     // Known values per entry compared in the value tier
	Logger         *logrus.Logger
}

// DefaultOptions returns the standard resolution policy
func DefaultOptions() Options {
	return Options{
		AliasThreshold: similarity.DefaultThreshold,
		ValueThreshold: similarity.DefaultThreshold,
		Tiers:          []Tier{TierValue, TierAlias},
		SampleRows:     3,
		ValueSample:    10,
	}
}

// Resolution records how one column was named
type Resolution struct {
	Index     int     `json:"index"`
	Raw       string  `json:"raw"` // Header name or labeler suggestion
	Canonical string  `json:"canonical"`
	Tier      Tier    `json:"tier"`
	Score     float64 `json:"score"`
	Collision bool    `json:"collision,omitempty"` // Canonical name was suffixed with the column position
}

// Outcome is the result of resolving every column of one file
type Outcome struct {
	Resolutions []Resolution
	LabelerErr  error // Set when headerless resolution ran without labeler suggestions
}

// Columns returns the canonical names in column order
func (o *Outcome) Columns() []string {
	cols := make([]string, len(o.Resolutions))
	for i, r := range o.Resolutions {
		cols[i] = r.Canonical
	}
	return cols
}

// Resolver resolves columns against one knowledge base
type Resolver struct {
	kb      *knowledge.KnowledgeBase
	labeler labeler.Labeler
	opts    Options
	logger  *logrus.Logger
}

// New creates a resolver. A nil labeler behaves as an unavailable one.
func New(kb *knowledge.KnowledgeBase, l labeler.Labeler, opts Options) *Resolver {
	def := DefaultOptions()
	if opts.AliasThreshold <= 0 {
		opts.AliasThreshold = def.AliasThreshold
	}
	if opts.ValueThreshold <= 0 {
		opts.ValueThreshold = def.ValueThreshold
	}
	if opts.Tiers == nil {
		opts.Tiers = def.Tiers
	}
	if opts.SampleRows <= 0 {
		opts.SampleRows = def.SampleRows
	}
	if opts.ValueSample <= 0 {
		opts.ValueSample = def.ValueSample
	}
	if l == nil {
		l = labeler.NoopLabeler{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Resolver{kb: kb, labeler: l, opts: opts, logger: logger}
}

// ResolveHeader resolves declared column names. rows supplies the values learned per column.
func (r *Resolver) ResolveHeader(header []string, rows [][]string) *Outcome {
	out := &Outcome{}
	claimed := make(map[string]bool)

	for i, raw := range header {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			raw = labeler.Placeholder(i)
		}

		res := Resolution{Index: i, Raw: raw, Tier: TierHeader, Score: 1}
		if m, ok := r.kb.Lookup(raw); ok {
			res.Score = m.Score
			if claimed[m.Canonical] {
				res.Canonical, res.Collision = r.collide(m.Canonical, i), true
			}
		}
		if res.Canonical == "" {
			res.Canonical = r.kb.AddColumn(raw)
		}

		r.finish(out, claimed, res, Column(rows, i))
	}
	return out
}

// ResolveHeaderless names columns that arrived without a header. The labeler is called once
// with at most SampleRows rows; its failure only removes the suggestions, never the run.
func (r *Resolver) ResolveHeaderless(ctx context.Context, rows [][]string) *Outcome {
	out := &Outcome{}
	n := width(rows)
	sample := rows
	if len(sample) > r.opts.SampleRows {
		sample = sample[:r.opts.SampleRows]
	}

	suggestions, err := r.labeler.Suggest(ctx, sample)
	if err != nil {
		out.LabelerErr = err
		suggestions = nil
		r.logger.WithFields(logrus.Fields{
			"labeler": r.labeler.Name(),
			"error":   err,
		}).Warn("Labeler failed, falling back to local matching")
	}
	names := labeler.Normalize(suggestions, n)

	claimed := make(map[string]bool)
	for i, name := range names {
		res := r.resolveSuggestion(i, name, Column(sample, i), claimed)
		r.finish(out, claimed, res, Column(rows, i))
	}
	return out
}

func (r *Resolver) resolveSuggestion(i int, name string, sample []string, claimed map[string]bool) Resolution {
	res := Resolution{Index: i, Raw: name}

	for _, tier := range r.opts.Tiers {
		switch tier {
		case TierValue:
			if canonical, score, ok := r.matchValues(sample, claimed); ok {
				res.Canonical, res.Tier, res.Score = canonical, TierValue, score
				return res
			}
		case TierAlias:
			m, _ := r.kb.Lookup(name)
			if m.Canonical == "" || (!m.Exact && m.Score < r.opts.AliasThreshold) {
				continue
			}
			if claimed[m.Canonical] {
				res.Canonical, res.Collision = r.collide(m.Canonical, i), true
			} else {
				r.kb.RegisterAlias(m.Canonical, name)
				res.Canonical = m.Canonical
			}
			res.Tier, res.Score = TierAlias, m.Score
			return res
		}
	}

	res.Tier, res.Score = TierSuggestion, 0
	if claimed[name] {
		res.Canonical, res.Collision = r.collide(name, i), true
	} else {
		res.Canonical = r.kb.AddCanonical(name)
	}
	return res
}

// matchValues compares the sample against each entry's most frequent values. Entries already
// claimed by an earlier column of this file are skipped. Ties keep the first-registered entry.
func (r *Resolver) matchValues(sample []string, claimed map[string]bool) (string, float64, bool) {
	sample = patterns.Clean(sample)
	if len(sample) == 0 {
		return "", 0, false
	}

	best, bestScore := "", 0.0
	for _, e := range r.kb.Entries() {
		if claimed[e.Name] || len(e.Values) == 0 {
			continue
		}
		top := e.TopValues(r.opts.ValueSample)
		known := make([]string, len(top))
		for i, vc := range top {
			known[i] = vc.Value
		}
		if score := similarity.ValueSetScore(sample, known); score > bestScore {
			best, bestScore = e.Name, score
		}
	}
	if best != "" && bestScore >= r.opts.ValueThreshold {
		return best, bestScore, true
	}
	return "", bestScore, false
}

// collide registers <canonical>_<position> as its own entry for a second column
// that resolved to an already claimed name
func (r *Resolver) collide(canonical string, i int) string {
	return r.kb.AddCanonical(fmt.Sprintf("%s_%d", canonical, i+1))
}

func (r *Resolver) finish(out *Outcome, claimed map[string]bool, res Resolution, values []string) {
	claimed[res.Canonical] = true
	r.kb.UpdateStatistics(res.Canonical, values)
	out.Resolutions = append(out.Resolutions, res)

	r.logger.WithFields(logrus.Fields{
		"index":     res.Index,
		"raw":       res.Raw,
		"canonical": res.Canonical,
		"tier":      res.Tier,
		"score":     fmt.Sprintf("%.2f", res.Score),
		"collision": res.Collision,
	}).Debug("Column resolution decided")
}

// Column extracts the i-th field of every row; short rows contribute nothing
func Column(rows [][]string, i int) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if i < len(row) {
			values = append(values, row[i])
		}
	}
	return values
}

func width(rows [][]string) int {
	n := 0
	for _, row := range rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

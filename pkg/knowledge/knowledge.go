/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: knowledge.go
Description: Persistent knowledge base of canonical columns. Resolves raw column names to
canonical entries through exact and fuzzy alias matching, accumulates learned statistics,
and keeps entries in registration order so ties resolve to the first-registered entry.
*/

package knowledge

import (
	"strings"

	"github.com/kleascm/mimicry/pkg/similarity"
	"github.com/sirupsen/logrus"
)

// Options configures a knowledge base
type Options struct {
	AliasThreshold float64 // Minimum similarity for a fuzzy alias match
	TopK           int     // Maximum size of each value-frequency table
	Logger         *logrus.Logger
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		AliasThreshold: similarity.DefaultThreshold,
		TopK:           100,
	}
}

// KnowledgeBase maps canonical names to column entries. It is the only state that
// outlives a pipeline run. A KnowledgeBase is not safe for concurrent use.
type KnowledgeBase struct {
	path    string
	opts    Options
	logger  *logrus.Logger
	entries map[string]*ColumnEntry
	order   []string // canonical names in registration order
}

// New creates an empty knowledge base bound to path
func New(path string, opts Options) *KnowledgeBase {
	if opts.AliasThreshold <= 0 {
		opts.AliasThreshold = similarity.DefaultThreshold
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &KnowledgeBase{
		path:    path,
		opts:    opts,
		logger:  logger,
		entries: make(map[string]*ColumnEntry),
	}
}

// Path returns the storage path
func (kb *KnowledgeBase) Path() string {
	return kb.path
}

// Len returns the number of canonical entries
func (kb *KnowledgeBase) Len() int {
	return len(kb.order)
}

// Names returns canonical names in registration order
func (kb *KnowledgeBase) Names() []string {
	out := make([]string, len(kb.order))
	copy(out, kb.order)
	return out
}

// Get returns the entry for a canonical name. The entry must not be modified by callers.
func (kb *KnowledgeBase) Get(name string) (*ColumnEntry, bool) {
	e, ok := kb.entries[name]
	return e, ok
}

// Entries returns all entries in registration order
func (kb *KnowledgeBase) Entries() []*ColumnEntry {
	out := make([]*ColumnEntry, 0, len(kb.order))
	for _, name := range kb.order {
		out = append(out, kb.entries[name])
	}
	return out
}

// Match describes how a raw name matched an existing entry
type Match struct {
	Canonical string
	Score     float64
	Exact     bool
}

// Lookup finds the entry a raw name would resolve to without modifying the knowledge base.
// Exact case-insensitive equality with a canonical name or alias always matches; otherwise
// the best fuzzy score must reach the alias threshold. Ties keep the first-registered entry.
func (kb *KnowledgeBase) Lookup(raw string) (Match, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Match{}, false
	}

	for _, name := range kb.order {
		if kb.entries[name].HasName(raw) {
			return Match{Canonical: name, Score: 1, Exact: true}, true
		}
	}

	var best Match
	for _, name := range kb.order {
		m := similarity.Best(raw, kb.entries[name].Names())
		if m.Index >= 0 && m.Score > best.Score {
			best = Match{Canonical: name, Score: m.Score}
		}
	}
	if best.Canonical != "" && best.Score >= kb.opts.AliasThreshold {
		return best, true
	}
	return best, false
}

// AddColumn resolves a raw name to a canonical name. A match registers raw as an alias
// of the matched entry; otherwise a new entry named raw is created.
func (kb *KnowledgeBase) AddColumn(raw string) string {
	raw = strings.TrimSpace(raw)
	if m, ok := kb.Lookup(raw); ok {
		kb.entries[m.Canonical].addAlias(raw)
		return m.Canonical
	}
	kb.ensure(raw)
	return raw
}

// AddCanonical creates an entry named name verbatim, bypassing alias matching.
// An existing entry of that name is returned unchanged.
func (kb *KnowledgeBase) AddCanonical(name string) string {
	kb.ensure(strings.TrimSpace(name))
	return strings.TrimSpace(name)
}

// RegisterAlias attaches alias to the canonical entry, creating the entry if needed
func (kb *KnowledgeBase) RegisterAlias(canonical, alias string) {
	e := kb.ensure(strings.TrimSpace(canonical))
	if alias = strings.TrimSpace(alias); alias != "" {
		e.addAlias(alias)
	}
}

// UpdateStatistics learns a sample of values for the canonical column. Unknown names
// get a fresh entry so the call never fails.
func (kb *KnowledgeBase) UpdateStatistics(canonical string, values []string) {
	e := kb.ensure(canonical)
	e.learn(values, kb.opts.TopK)

	kb.logger.WithFields(logrus.Fields{
		"column":   canonical,
		"patterns": e.Patterns,
		"unique":   e.Unique,
		"values":   len(e.Values),
	}).Debug("Column statistics updated")
}

func (kb *KnowledgeBase) ensure(name string) *ColumnEntry {
	if e, ok := kb.entries[name]; ok {
		return e
	}
	e := newEntry(name)
	kb.entries[name] = e
	kb.order = append(kb.order, name)
	return e
}

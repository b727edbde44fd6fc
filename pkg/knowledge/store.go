/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: store.go
Description: Durable storage for the knowledge base. Reads the whole document into memory
before building any state, resets to an empty knowledge base on corrupt input, and writes
through a temporary file so a failed save never truncates the previous state.
*/

package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kleascm/mimicry/pkg/patterns"
	"github.com/sirupsen/logrus"
)

// document is the persisted layout: five top-level fields
type document struct {
	Columns   aliasTable                `json:"columns"`
	Patterns  map[string][]string       `json:"patterns"`
	ValueSets map[string]map[string]int `json:"value_sets"`
	Stats     map[string]Stats          `json:"stats"`
	Uniques   []string                  `json:"uniques"`
}

// aliasTable is a JSON object whose key order is the registration order
type aliasTable []aliasRow

type aliasRow struct {
	Name    string
	Aliases []string
}

func (t aliasTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, row := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(row.Name)
		if err != nil {
			return nil, err
		}
		aliases := row.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		val, err := json.Marshal(aliases)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *aliasTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("columns: expected object, got %v", tok)
	}

	var rows aliasTable
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("columns: expected string key, got %v", keyTok)
		}
		var aliases []string
		if err := dec.Decode(&aliases); err != nil {
			return fmt.Errorf("columns[%s]: %w", key, err)
		}
		rows = append(rows, aliasRow{Name: key, Aliases: aliases})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = rows
	return nil
}

// Load reads the knowledge base at path. A missing file yields an empty knowledge base;
// an unreadable or corrupt file also yields an empty one and reset is true.
func Load(path string, opts Options) (kb *KnowledgeBase, reset bool) {
	kb = New(path, opts)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		kb.logger.WithField("path", path).Info("No knowledge base found, starting fresh")
		return kb, false
	}
	if err != nil {
		kb.logger.WithFields(logrus.Fields{"path": path, "error": err}).Warn("Knowledge base unreadable, starting fresh")
		return kb, true
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		kb.logger.WithFields(logrus.Fields{"path": path, "error": err}).Warn("Knowledge base corrupt, starting fresh")
		return New(path, opts), true
	}

	kb.apply(&doc)
	kb.logger.WithFields(logrus.Fields{"path": path, "columns": kb.Len()}).Info("Knowledge base loaded")
	return kb, false
}

// apply builds in-memory state from a decoded document
func (kb *KnowledgeBase) apply(doc *document) {
	for _, row := range doc.Columns {
		e := kb.ensure(row.Name)
		e.Aliases = e.Aliases[:0]
		for _, a := range row.Aliases {
			e.addAlias(a)
		}
	}
	for _, name := range sortedKeys(doc.Patterns) {
		e := kb.ensure(name)
		tags := make([]patterns.Tag, 0, len(doc.Patterns[name]))
		for _, p := range doc.Patterns[name] {
			tags = append(tags, patterns.ParseTag(p))
		}
		e.Patterns = patterns.Union(nil, tags)
	}
	for _, name := range sortedKeys(doc.ValueSets) {
		e := kb.ensure(name)
		for v, c := range doc.ValueSets[name] {
			e.Values[v] = c
		}
	}
	for _, name := range sortedKeys(doc.Stats) {
		s := doc.Stats[name]
		kb.ensure(name).Stats = &s
	}
	for _, name := range doc.Uniques {
		kb.ensure(name).Unique = true
	}
}

// Save writes the whole knowledge base to its path, replacing what was there
func (kb *KnowledgeBase) Save() error {
	data, err := json.MarshalIndent(kb.document(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal knowledge base: %w", err)
	}

	dir := filepath.Dir(kb.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create knowledge base directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".kb-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write knowledge base: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close knowledge base: %w", err)
	}
	if err := os.Rename(tmp.Name(), kb.path); err != nil {
		return fmt.Errorf("failed to replace knowledge base: %w", err)
	}

	kb.logger.WithFields(logrus.Fields{"path": kb.path, "columns": kb.Len()}).Info("Knowledge base saved")
	return nil
}

func (kb *KnowledgeBase) document() *document {
	doc := &document{
		Columns:   make(aliasTable, 0, len(kb.order)),
		Patterns:  make(map[string][]string),
		ValueSets: make(map[string]map[string]int),
		Stats:     make(map[string]Stats),
		Uniques:   []string{},
	}
	for _, e := range kb.Entries() {
		doc.Columns = append(doc.Columns, aliasRow{Name: e.Name, Aliases: e.Aliases})
		if len(e.Patterns) > 0 {
			tags := make([]string, len(e.Patterns))
			for i, t := range e.Patterns {
				tags[i] = string(t)
			}
			doc.Patterns[e.Name] = tags
		}
		if len(e.Values) > 0 {
			doc.ValueSets[e.Name] = e.Values
		}
		if e.Stats != nil {
			doc.Stats[e.Name] = *e.Stats
		}
		if e.Unique {
			doc.Uniques = append(doc.Uniques, e.Name)
		}
	}
	return doc
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: labeler.go
Description: Semantic labeler boundary. A labeler looks at a small sample of headerless rows
and suggests one column name per column. Provides the Labeler interface, the backend factory,
the offline no-op labeler, and the response normalisation shared by every backend.
*/

package labeler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrUnavailable is returned when no labeling backend is configured
var ErrUnavailable = errors.New("semantic labeler unavailable")

// Labeler suggests column names for a sample of rows
type Labeler interface {
	// Suggest returns suggested names in column order. The result may be shorter or
	// longer than the column count; callers normalise it with Normalize.
	Suggest(ctx context.Context, rows [][]string) ([]string, error)
	Name() string
}

const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderHTTP   = "http"
)

// DefaultTimeout bounds a single Suggest call
const DefaultTimeout = 20 * time.Second

// Options configures a labeling backend
type Options struct {
	Provider string        // none, openai or http
	Model    string        // Model identifier sent to the backend
	Endpoint string        // Base URL (openai) or full URL (http)
	APIKey   string        // Bearer credential, optional for http
	Timeout  time.Duration // Per-call deadline
	Logger   *logrus.Logger
}

// New returns the labeler for the configured provider
func New(opts Options) (Labeler, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	switch strings.ToLower(opts.Provider) {
	case "", ProviderNone:
		return NoopLabeler{}, nil
	case ProviderOpenAI:
		return NewOpenAILabeler(opts), nil
	case ProviderHTTP:
		if opts.Endpoint == "" {
			return nil, fmt.Errorf("http labeler requires an endpoint")
		}
		return NewHTTPLabeler(opts), nil
	default:
		return nil, fmt.Errorf("unknown labeler provider: %s", opts.Provider)
	}
}

// NoopLabeler is the offline labeler; every call fails with ErrUnavailable
type NoopLabeler struct{}

func (NoopLabeler) Suggest(context.Context, [][]string) ([]string, error) {
	return nil, ErrUnavailable
}

func (NoopLabeler) Name() string { return ProviderNone }

// Placeholder is the positional name used when no better name exists (1-based)
func Placeholder(index int) string {
	return fmt.Sprintf("col_%d", index+1)
}

// Normalize truncates or pads names to exactly n entries. Blank names are replaced
// with their positional placeholder.
func Normalize(names []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		if i < len(names) {
			out[i] = strings.TrimSpace(names[i])
		}
		if out[i] == "" {
			out[i] = Placeholder(i)
		}
	}
	return out
}

// ParseColumns extracts the column list from a backend reply. Accepts {"columns": [...]}
// or a bare JSON array, optionally wrapped in markdown fences or surrounding prose.
func ParseColumns(text string) ([]string, error) {
	text = stripFences(strings.TrimSpace(text))

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		var reply struct {
			Columns []string `json:"columns"`
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &reply); err == nil && reply.Columns != nil {
			return reply.Columns, nil
		}
	}

	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		var names []string
		if err := json.Unmarshal([]byte(text[start:end+1]), &names); err == nil {
			return names, nil
		}
	}

	return nil, fmt.Errorf("failed to parse column names from labeler reply")
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:] // language tag line
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

const systemInstruction = "You are a data assistant that only returns JSON response with column headers."

// buildPrompt renders the row sample into the labeling instruction
func buildPrompt(rows [][]string) string {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		data = []byte("[]")
	}
	var b strings.Builder
	b.WriteString("You are a helpful assistant that understands tabular data. ")
	b.WriteString("Based on the rows below, infer what each column likely represents.\n\n")
	b.WriteString("Return your result as JSON with key \"columns\" like:\n")
	b.WriteString(`{ "columns": ["Account Number", "Branch Code", "IFSC", "Amount", "Address"] }`)
	b.WriteString("\n\nData:\n")
	b.Write(data)
	b.WriteString("\n")
	return b.String()
}

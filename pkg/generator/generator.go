/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generator.go
Description: Value generator. Synthesizes records column by column from knowledge base
statistics. Entries are looked up fresh for every value; the only state carried across
records is the per-column uniqueness tracking of the current run.
*/

package generator

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/kleascm/mimicry/pkg/knowledge"
	"github.com/sirupsen/logrus"
)

// Defaults used when a column has no statistics
const (
	DefaultIntMin     = 1000
	DefaultIntMax     = 9999
	DefaultFloatMean  = 100.0
	DefaultFloatStd   = 10.0
	DefaultIDLength   = 14
	DefaultMoneyMin   = 100.0
	DefaultMoneyMax   = 999999.0
	DefaultUniqueBase = 1000
)

// maxUniqueAttempts bounds redraws for a unique refined value before falling back to a token
const maxUniqueAttempts = 64

// Record is one synthesized row: canonical column name to string, int64 or float64
type Record map[string]any

// Options configures a generator
type Options struct {
	TopK   int    // Most frequent values sampled by the empirical strategy
	Seed   uint64 // 0 picks a time based seed
	Logger *logrus.Logger
}

// DefaultOptions returns the standard generator settings
func DefaultOptions() Options {
	return Options{TopK: 10}
}

// Generator produces synthetic records from a knowledge base
type Generator struct {
	kb     *knowledge.KnowledgeBase
	opts   Options
	rng    *rand.Rand
	src    *rand.ChaCha8
	faker  *gofakeit.Faker
	logger *logrus.Logger
}

// New creates a generator. The same seed and knowledge base yield the same records.
func New(kb *knowledge.KnowledgeBase, opts Options) *Generator {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], opts.Seed)
	src := rand.NewChaCha8(seed)

	return &Generator{
		kb:     kb,
		opts:   opts,
		rng:    rand.New(src),
		src:    src,
		faker:  gofakeit.New(opts.Seed),
		logger: logger,
	}
}

// Seed returns the seed in use
func (g *Generator) Seed() uint64 {
	return g.opts.Seed
}

// run holds the uniqueness tracking of one Generate call
type run struct {
	emitted map[string]int                 // values produced so far per column
	seen    map[string]map[string]struct{} // distinct values per unique column
}

// Generate produces count records over columns. It never fails: columns the knowledge base
// knows nothing about receive filler values.
func (g *Generator) Generate(columns []string, count int) []Record {
	if count < 0 {
		count = 0
	}

	r := &run{
		emitted: make(map[string]int, len(columns)),
		seen:    make(map[string]map[string]struct{}),
	}

	records := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		rec := make(Record, len(columns))
		for _, col := range columns {
			rec[col] = g.value(r, col)
			r.emitted[col]++
		}
		records = append(records, rec)
	}

	g.logger.WithFields(logrus.Fields{
		"columns": len(columns),
		"records": count,
		"seed":    g.opts.Seed,
	}).Debug("Records generated")

	return records
}

// Value synthesizes a single value for a column outside of a run
func (g *Generator) Value(column string) any {
	r := &run{emitted: map[string]int{}, seen: map[string]map[string]struct{}{}}
	return g.value(r, column)
}

func (g *Generator) value(r *run, column string) any {
	e, _ := g.kb.Get(column)
	strategy := StrategyFor(e)

	switch strategy {
	case StrategyUniqueInteger:
		base := int64(DefaultUniqueBase)
		if e.Stats != nil {
			base = int64(math.Floor(e.Stats.Min))
		}
		return base + int64(r.emitted[column])
	case StrategyUniqueToken:
		return g.uniqueToken(r, column)
	}

	v := g.draw(strategy, e)
	if e != nil && e.Unique && strategy.refined() {
		return g.dedupe(r, column, strategy, e, v)
	}
	return v
}

// draw produces one value of a non-unique strategy
func (g *Generator) draw(strategy Strategy, e *knowledge.ColumnEntry) any {
	switch strategy {
	case StrategyLongNumericID:
		return g.longNumericID(e)
	case StrategyMoney:
		lo, hi := DefaultMoneyMin, DefaultMoneyMax
		if e.Stats != nil {
			lo, hi = e.Stats.Min, e.Stats.Max
		}
		return FormatMoney(g.floatRange(lo, hi))
	case StrategyAlphanumericCode:
		return strings.ToUpper(g.faker.Numerify(g.faker.Lexify("??##??##")))
	case StrategyTextCode:
		return strings.ToUpper(g.faker.Lexify("???? ??"))
	case StrategyInteger:
		lo, hi := int64(DefaultIntMin), int64(DefaultIntMax)
		if e.Stats != nil {
			lo, hi = int64(math.Ceil(e.Stats.Min)), int64(math.Floor(e.Stats.Max))
		}
		if hi < lo {
			hi = lo
		}
		return lo + g.rng.Int64N(hi-lo+1)
	case StrategyFloat:
		mean, std := DefaultFloatMean, DefaultFloatStd
		if e.Stats != nil {
			mean, std = e.Stats.Mean, e.Stats.Std
		}
		return math.Round((mean+g.rng.NormFloat64()*std)*100) / 100
	case StrategyDate:
		return g.faker.Date().Format("2006-01-02")
	case StrategyBoolean:
		if g.rng.IntN(2) == 0 {
			return "Yes"
		}
		return "No"
	case StrategyEmpirical:
		return g.empirical(e)
	default:
		return g.faker.Word()
	}
}

// empirical samples proportionally to observed counts among the top values
func (g *Generator) empirical(e *knowledge.ColumnEntry) string {
	top := e.TopValues(g.opts.TopK)
	total := 0
	for _, vc := range top {
		total += vc.Count
	}
	if total <= 0 {
		return g.faker.Word()
	}

	pick := g.rng.IntN(total)
	for _, vc := range top {
		if pick < vc.Count {
			return vc.Value
		}
		pick -= vc.Count
	}
	return top[len(top)-1].Value
}

func (g *Generator) longNumericID(e *knowledge.ColumnEntry) string {
	length := DefaultIDLength
	if e.Stats != nil && e.Stats.MaxLength > 1 {
		length = e.Stats.MaxLength
	}
	return fmt.Sprintf("%d%s", 1+g.rng.IntN(9), g.faker.Numerify(strings.Repeat("#", length-1)))
}

func (g *Generator) floatRange(lo, hi float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + g.rng.Float64()*(hi-lo)
}

// uniqueToken draws UUIDs until one is new for the column
func (g *Generator) uniqueToken(r *run, column string) string {
	seen := r.seenFor(column)
	for {
		id, err := uuid.NewRandomFromReader(g.src)
		if err != nil {
			id = uuid.New()
		}
		token := id.String()
		if _, dup := seen[token]; !dup {
			seen[token] = struct{}{}
			return token
		}
	}
}

// dedupe redraws a refined value until it is new for the column, then falls back to a token
func (g *Generator) dedupe(r *run, column string, strategy Strategy, e *knowledge.ColumnEntry, v any) any {
	seen := r.seenFor(column)
	for attempt := 0; attempt < maxUniqueAttempts; attempt++ {
		key := fmt.Sprint(v)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			return v
		}
		v = g.draw(strategy, e)
	}

	g.logger.WithFields(logrus.Fields{
		"column":   column,
		"strategy": strategy.String(),
	}).Warn("Value space exhausted for unique column, using tokens")
	return g.uniqueToken(r, column)
}

func (r *run) seenFor(column string) map[string]struct{} {
	s, ok := r.seen[column]
	if !ok {
		s = make(map[string]struct{})
		r.seen[column] = s
	}
	return s
}

// FormatMoney renders v with thousands separators and two decimals, e.g. 1,234,567.89
func FormatMoney(v float64) string {
	neg := v < 0
	s := fmt.Sprintf("%.2f", math.Abs(v))
	whole, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

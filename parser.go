package parjson

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cybergodev/parjson/internal"
)

// Parser parses and serializes JSON documents on a fixed pool of workers.
// A Parser is safe for concurrent use; each call owns its own chunks and
// buffers and only the pool is shared.
type Parser struct {
	config    *Config
	pool      *internal.WorkerPool
	state     int32 // 0=active, 1=closed
	closeOnce sync.Once
	metrics   *internal.MetricsCollector
	logger    *slog.Logger
}

// Document is the result of a successful parse
type Document struct {
	root   Value
	tokens int
	chunks int
}

// Root returns the document value
func (d *Document) Root() *Value { return &d.root }

// TokenCount returns the number of structural tokens in the input
func (d *Document) TokenCount() int { return d.tokens }

// Chunks returns how many chunks the input was parsed in
func (d *Document) Chunks() int { return d.chunks }

// New creates a Parser. Without a configuration DefaultConfig is used.
// An invalid configuration panics.
func New(config ...*Config) *Parser {
	var cfg *Config
	if len(config) > 0 && config[0] != nil {
		cfg = config[0].Clone()
	} else {
		cfg = DefaultConfig()
	}
	if err := ValidateConfig(cfg); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var mc *internal.MetricsCollector
	if cfg.EnableMetrics {
		mc = internal.NewMetricsCollector(cfg.Registerer)
	} else {
		mc = internal.NewMetricsCollector(nil)
	}

	return &Parser{
		config:  cfg,
		pool:    internal.NewWorkerPool(cfg.Threads),
		metrics: mc,
		logger:  logger.With("component", "parjson-parser"),
	}
}

// Close stops the worker pool. Calls after the first are no-ops.
func (p *Parser) Close() error {
	p.closeOnce.Do(func() {
		atomic.StoreInt32(&p.state, 1)
		p.pool.Stop()
	})
	return nil
}

// IsClosed reports whether Close has been called
func (p *Parser) IsClosed() bool {
	return atomic.LoadInt32(&p.state) != 0
}

func (p *Parser) checkClosed(op string) error {
	if p.IsClosed() {
		return newOperationError(op, "parser is closed", ErrParserClosed)
	}
	return nil
}

// Config returns a copy of the parser configuration
func (p *Parser) Config() *Config {
	return p.config.Clone()
}

// ============================================================================
// PARSING
// ============================================================================

// Parse parses data using the configured number of threads
func (p *Parser) Parse(data []byte) (*Document, error) {
	return p.ParseThreads(data, p.config.Threads)
}

// ParseSingle parses data on the calling goroutine
func (p *Parser) ParseSingle(data []byte) (*Document, error) {
	return p.ParseThreads(data, 1)
}

// ParseThreads parses data split across at most threads chunks. Small
// inputs and inputs the planner cannot split are parsed as one chunk.
func (p *Parser) ParseThreads(data []byte, threads int) (*Document, error) {
	start := time.Now()
	doc, err := p.parse(data, threads, nil)
	p.finish(internal.OpParse, start, doc, len(data), err)
	return doc, err
}

// parseWithCuts parses data with chunks starting at the given token
// indices instead of the planner's choice
func (p *Parser) parseWithCuts(data []byte, cuts []int) (*Document, error) {
	start := time.Now()
	doc, err := p.parse(data, 0, cuts)
	p.finish(internal.OpParse, start, doc, len(data), err)
	return doc, err
}

func (p *Parser) parse(data []byte, threads int, cuts []int) (*Document, error) {
	if err := p.checkClosed("parse"); err != nil {
		return nil, err
	}
	if int64(len(data)) > p.config.MaxJSONSize {
		return nil, newOperationError("parse",
			fmt.Sprintf("input of %d bytes exceeds limit of %d", len(data), p.config.MaxJSONSize), ErrSizeLimit)
	}

	tok, err := internal.Scan(data, p.config.MaxNestingDepth)
	if err != nil {
		return nil, classifyInternal(err, -1)
	}

	var ranges []chunkRange
	switch {
	case cuts != nil:
		for _, c := range cuts {
			if !cutAllowed(tok, c) {
				return nil, newGrammarError(-1, -1, fmt.Sprintf("token %d is not a valid chunk boundary", c))
			}
		}
		ranges = rangesFromCuts(tok.Len(), cuts)
	case threads <= 1 || tok.Len() < p.config.MinParallelTokens:
		ranges = []chunkRange{{0, tok.Len()}}
	default:
		ranges = planChunks(tok, threads)
		if len(ranges) == 1 {
			p.metrics.RecordFallback(internal.OpParse)
			p.logger.Debug("parse fell back to a single chunk",
				slog.Int("threads", threads), slog.Int("tokens", tok.Len()))
		}
	}
	p.metrics.RecordChunks(internal.OpParse, len(ranges))

	root, err := p.parseRanges(tok, ranges)
	if err != nil {
		return nil, err
	}
	return &Document{root: root, tokens: tok.Len(), chunks: len(ranges)}, nil
}

// parseRanges runs the two parallel phases, validate then build, with a
// barrier after each, followed by the sequential merge
func (p *Parser) parseRanges(tok *internal.Tokens, ranges []chunkRange) (Value, error) {
	reports := make([]*chunkReport, len(ranges))
	err := p.runAll(len(ranges), func(i int) error {
		r, err := validateChunk(tok, ranges[i], i)
		reports[i] = r
		return err
	})
	if err != nil {
		return Value{}, err
	}
	if err := checkBoundaries(reports, ranges, tok); err != nil {
		return Value{}, err
	}

	trees := make([]*chunkTree, len(ranges))
	err = p.runAll(len(ranges), func(i int) error {
		t, err := newChunkBuilder(tok, ranges[i], i, reports[i]).build()
		trees[i] = t
		return err
	})
	if err != nil {
		return Value{}, err
	}
	return mergeChunks(trees, reports)
}

// runAll runs fn for 0..n-1 and waits for all of them. A single task runs
// on the calling goroutine.
func (p *Parser) runAll(n int, fn func(i int) error) error {
	if n == 1 {
		return fn(0)
	}
	futures := make([]*internal.Future, n)
	for i := 0; i < n; i++ {
		futures[i] = p.pool.Submit(func() error { return fn(i) })
	}
	return internal.WaitAll(futures)
}

// ============================================================================
// SERIALIZATION
// ============================================================================

// Serialize renders v as JSON using up to threads writers
func (p *Parser) Serialize(v *Value, threads int, pretty bool) ([]byte, error) {
	start := time.Now()
	out, err := p.serialize(v, threads, pretty)
	p.finish(internal.OpSerialize, start, nil, len(out), err)
	return out, err
}

// serialize renders and concatenates the segments without recording the
// operation
func (p *Parser) serialize(v *Value, threads int, pretty bool) ([]byte, error) {
	segments, err := p.render(v, threads, pretty)
	if err != nil {
		return nil, err
	}
	defer releaseSegments(segments)

	size := 0
	for _, s := range segments {
		size += s.Len()
	}
	out := make([]byte, 0, size)
	for _, s := range segments {
		out = append(out, s.Bytes()...)
	}
	return out, nil
}

// SerializeSingle renders v on the calling goroutine
func (p *Parser) SerializeSingle(v *Value, pretty bool) ([]byte, error) {
	return p.Serialize(v, 1, pretty)
}

// WriteTo renders v and writes the segments to w in document order
func (p *Parser) WriteTo(w io.Writer, v *Value, threads int, pretty bool) (int64, error) {
	start := time.Now()
	segments, err := p.render(v, threads, pretty)
	var written int64
	if err == nil {
		for _, s := range segments {
			n, werr := w.Write(s.Bytes())
			written += int64(n)
			if werr != nil {
				err = newOperationError("serialize", "write failed", werr)
				break
			}
		}
	}
	releaseSegments(segments)
	p.finish(internal.OpSerialize, start, nil, int(written), err)
	return written, err
}

func (p *Parser) render(v *Value, threads int, pretty bool) ([]*internal.Encoder, error) {
	if err := p.checkClosed("serialize"); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, newOperationError("serialize", "nil value", ErrInvalidValue)
	}

	events, err := flatten(v, make([]event, 0, 64))
	if err != nil {
		return nil, err
	}

	ranges := []chunkRange{{0, len(events)}}
	if threads > 1 && len(events) >= p.config.MinParallelEvents {
		var ok bool
		ranges, ok = segmentRanges(events, threads, p.config.SegmentStrategy)
		if !ok {
			p.metrics.RecordFallback(internal.OpSerialize)
			p.logger.Debug("serialize fell back to a single segment",
				slog.Int("threads", threads), slog.Int("events", len(events)))
		}
	}
	p.metrics.RecordChunks(internal.OpSerialize, len(ranges))

	segments := make([]*internal.Encoder, len(ranges))
	for i, rng := range ranges {
		segments[i] = internal.GetEncoderWithSize(max(rng.len()*bytesPerEventHint, DefaultSegmentBufferSize))
	}
	err = p.runAll(len(ranges), func(i int) error {
		return renderSegment(segments[i], events, ranges[i], pretty)
	})
	if err != nil {
		releaseSegments(segments)
		return nil, err
	}
	return segments, nil
}

func releaseSegments(segments []*internal.Encoder) {
	for _, s := range segments {
		internal.PutEncoder(s)
	}
}

// ============================================================================
// STATISTICS
// ============================================================================

// Stats is a snapshot of the parser's counters
type Stats struct {
	Operations   int64            `json:"operations"`
	Successful   int64            `json:"successful"`
	Failed       int64            `json:"failed"`
	Parallel     int64            `json:"parallel"`
	Fallbacks    int64            `json:"fallbacks"`
	Tokens       int64            `json:"tokens"`
	Bytes        int64            `json:"bytes"`
	AvgTime      time.Duration    `json:"avg_time"`
	MaxTime      time.Duration    `json:"max_time"`
	ErrorsByType map[string]int64 `json:"errors_by_type"`
}

// Stats returns the parser's operation counters
func (p *Parser) Stats() Stats {
	m := p.metrics.GetMetrics()
	return Stats{
		Operations:   m.TotalOperations,
		Successful:   m.SuccessfulOps,
		Failed:       m.FailedOps,
		Parallel:     m.ParallelOps,
		Fallbacks:    m.FallbackOps,
		Tokens:       m.TotalTokens,
		Bytes:        m.TotalBytes,
		AvgTime:      m.AvgProcessingTime,
		MaxTime:      m.MaxProcessingTime,
		ErrorsByType: m.ErrorsByType,
	}
}

// StatsSummary returns a human-readable summary of the counters
func (p *Parser) StatsSummary() string {
	return p.metrics.GetSummary()
}

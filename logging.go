package parjson

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// finish records the outcome of an operation and logs it
func (p *Parser) finish(op string, start time.Time, doc *Document, size int, err error) {
	duration := time.Since(start)
	tokens := 0
	if doc != nil {
		tokens = doc.tokens
	}
	p.metrics.RecordOperation(op, duration, err == nil, tokens, size)

	if err != nil {
		p.logError(context.Background(), op, err)
		return
	}
	p.logOperation(context.Background(), op, duration, size)
}

// logError logs a failed operation with structured logging
func (p *Parser) logError(ctx context.Context, op string, err error) {
	errorType := Code(err)
	p.metrics.RecordError(errorType)

	if errors.Is(err, ErrParserClosed) {
		return
	}

	offset, chunk := -1, -1
	var e *Error
	if errors.As(err, &e) {
		offset, chunk = e.Offset, e.Chunk
	}

	p.logger.ErrorContext(ctx, "JSON operation failed",
		slog.String("operation", op),
		slog.String("error", sanitizeError(err)),
		slog.String("error_type", errorType),
		slog.Int("offset", offset),
		slog.Int("chunk", chunk),
		slog.String("parser_id", p.id()),
	)
}

// logOperation logs a successful operation, as a warning when it was slow
func (p *Parser) logOperation(ctx context.Context, op string, duration time.Duration, size int) {
	attrs := []slog.Attr{
		slog.String("operation", op),
		slog.Int("bytes", size),
		slog.Int64("duration_ms", duration.Milliseconds()),
		slog.String("parser_id", p.id()),
	}

	if duration > SlowOperationThreshold {
		attrs = append(attrs, slog.Int64("threshold_ms", SlowOperationThreshold.Milliseconds()))
		p.logger.LogAttrs(ctx, slog.LevelWarn, "Slow JSON operation detected", attrs...)
		return
	}
	p.logger.LogAttrs(ctx, slog.LevelDebug, "JSON operation completed", attrs...)
}

func (p *Parser) id() string {
	return fmt.Sprintf("parser_%p", p)
}

// sanitizeError bounds the length of error messages that echo input bytes
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return truncateString(err.Error(), 200)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

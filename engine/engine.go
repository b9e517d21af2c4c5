// Package engine manages named rules: it stores their text, conjoins several of
// them into one expression and evaluates the result against a record.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jvitoroc/gorules/eval"
	"github.com/jvitoroc/gorules/log"
	"github.com/jvitoroc/gorules/ruleql"
	"github.com/jvitoroc/gorules/store"
)

const (
	lastUpdatedKey = "last_updated"
	tracerName     = "github.com/jvitoroc/gorules/engine"
)

var (
	ErrRuleNotFound = errors.New("rule not found")
	ErrNoRules      = errors.New("no rules given")
	ErrInvalidName  = store.ErrInvalidName
)

// Option configures an [Engine].
type Option func(*Engine)

// WithStrict makes CreateRule reject rules that reference attributes outside
// the catalog or unknown comparison operators, instead of failing later at
// evaluation.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithTracerProvider sets the provider the engine's spans are recorded with.
// The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// WithClock replaces the clock used for the last_updated metadata.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

type Engine struct {
	store   store.Store
	catalog eval.Catalog
	tracer  trace.Tracer
	now     func() time.Time
	strict  bool
}

func New(s store.Store, catalog eval.Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		catalog: catalog,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) Catalog() eval.Catalog {
	return e.catalog
}

// CreateRule parses text and, if it is well formed, stores it under name,
// replacing any rule of the same name.
func (e *Engine) CreateRule(ctx context.Context, name, text string) (*eval.Expression, error) {
	ctx, span := e.tracer.Start(ctx, "create rule", trace.WithAttributes(
		attribute.String("rule.name", name),
	))
	defer span.End()

	expr, err := e.createRule(ctx, name, text)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("create rule %q: %w", name, err)
	}

	log.WithContext(ctx).DebugContext(ctx, "rule created",
		slog.String("name", name),
		slog.String("rule", expr.String()),
	)

	return expr, nil
}

func (e *Engine) createRule(ctx context.Context, name, text string) (*eval.Expression, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}

	expr, err := ruleql.Parse(text)
	if err != nil {
		return nil, err
	}

	if e.strict {
		if err := eval.Check(expr, e.catalog); err != nil {
			return nil, err
		}
	}

	if err := e.store.Store(ctx, name, text); err != nil {
		return nil, err
	}

	if err := e.touch(ctx); err != nil {
		return nil, err
	}

	return expr, nil
}

func (e *Engine) Rules(ctx context.Context) ([]store.Rule, error) {
	ctx, span := e.tracer.Start(ctx, "list rules")
	defer span.End()

	return e.store.List(ctx)
}

func (e *Engine) Rule(ctx context.Context, name string) (*store.Rule, error) {
	rules, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, r := range rules {
		if r.Name == name {
			return &r, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, name)
}

// DeleteRule removes a rule. Deleting an unknown rule is not an error.
func (e *Engine) DeleteRule(ctx context.Context, name string) error {
	ctx, span := e.tracer.Start(ctx, "delete rule", trace.WithAttributes(
		attribute.String("rule.name", name),
	))
	defer span.End()

	if err := e.store.Remove(ctx, name); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete rule %q: %w", name, err)
	}

	log.WithContext(ctx).DebugContext(ctx, "rule deleted", slog.String("name", name))

	return e.touch(ctx)
}

// LastUpdated reports when a rule was last created, replaced or deleted.
func (e *Engine) LastUpdated(ctx context.Context) (time.Time, bool, error) {
	v, ok, err := e.store.Metadata(ctx, lastUpdatedKey)
	if err != nil || !ok {
		return time.Time{}, false, err
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid %s metadata %q: %w", lastUpdatedKey, v, err)
	}

	return t, true, nil
}

func (e *Engine) touch(ctx context.Context) error {
	return e.store.SetMetadata(ctx, lastUpdatedKey, e.now().UTC().Format(time.RFC3339))
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jvitoroc/gorules/eval"
	"github.com/jvitoroc/gorules/log"
	"github.com/jvitoroc/gorules/ruleql"
)

// Combine parses the named rules and joins them with AND in the given order.
// It returns nil when names is empty. If any rule is missing, none is parsed.
func (e *Engine) Combine(ctx context.Context, names []string) (*eval.Expression, error) {
	ctx, span := e.tracer.Start(ctx, "combine rules", trace.WithAttributes(
		attribute.StringSlice("rule.names", names),
	))
	defer span.End()

	expr, err := e.combine(ctx, names)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return expr, nil
}

func (e *Engine) combine(ctx context.Context, names []string) (*eval.Expression, error) {
	if len(names) == 0 {
		return nil, nil
	}

	texts := make([]string, len(names))
	var missing []string

	for i, name := range names {
		text, ok, err := e.store.Fetch(ctx, name)
		if err != nil {
			return nil, err
		}

		if !ok {
			missing = append(missing, name)
			continue
		}

		texts[i] = text
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: one or more rules are missing: %s", ErrRuleNotFound, strings.Join(missing, ", "))
	}

	var combined *eval.Expression
	for i, text := range texts {
		expr, err := ruleql.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", names[i], err)
		}

		if combined == nil {
			combined = expr
			continue
		}

		combined = eval.NewAnd(combined, expr)
	}

	log.WithContext(ctx).DebugContext(ctx, "rules combined",
		slog.Any("names", names),
		slog.String("rule", combined.String()),
	)

	return combined, nil
}

// Evaluate applies expr to values using the engine's attribute catalog.
func (e *Engine) Evaluate(expr *eval.Expression, values map[string]any) (bool, error) {
	return eval.Evaluate(expr, e.catalog, values)
}

// EvaluateRules combines the named rules and evaluates them against values.
func (e *Engine) EvaluateRules(ctx context.Context, names []string, values map[string]any) (bool, error) {
	if len(names) == 0 {
		return false, ErrNoRules
	}

	ctx, span := e.tracer.Start(ctx, "evaluate rules", trace.WithAttributes(
		attribute.StringSlice("rule.names", names),
	))
	defer span.End()

	expr, err := e.combine(ctx, names)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	result, err := e.Evaluate(expr, values)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	span.SetAttributes(attribute.Bool("rule.result", result))
	log.WithContext(ctx).DebugContext(ctx, "rules evaluated",
		slog.Any("names", names),
		slog.Bool("result", result),
	)

	return result, nil
}

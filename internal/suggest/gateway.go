// Package suggest wraps an external text-completion model that proposes item
// fields from a product name and estimates an item's collectible appeal.
//
// Replies are decoded strictly: a reply either yields a fully typed value or a
// MalformedResponseError. Estimations are capped per day by a Limiter.
package suggest

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/erazemk/datavault/internal/model"
)

// Default reply length limits, in tokens.
const (
	FieldsMaxTokens     = 150
	EstimationMaxTokens = 100
)

// Call kinds, as reported to observers.
const (
	KindFields     = "fields"
	KindEstimation = "estimation"
)

// Observer is told the outcome of every gateway call (see Kind).
type Observer func(kind, outcome string)

// Gateway turns completer replies into typed suggestions.
type Gateway struct {
	completer Completer
	limiter   *Limiter
	observers []Observer

	FieldsMaxTokens     int
	EstimationMaxTokens int
}

// NewGateway creates a gateway. A nil limiter means estimations are unlimited.
func NewGateway(c Completer, l *Limiter) *Gateway {
	return &Gateway{
		completer:           c,
		limiter:             l,
		FieldsMaxTokens:     FieldsMaxTokens,
		EstimationMaxTokens: EstimationMaxTokens,
	}
}

// Observe registers an outcome observer.
func (g *Gateway) Observe(o Observer) {
	g.observers = append(g.observers, o)
}

// Limiter returns the estimation limiter, or nil.
func (g *Gateway) Limiter() *Limiter {
	return g.limiter
}

// SuggestFields asks for the missing fields of a product called name.
func (g *Gateway) SuggestFields(ctx context.Context, name string) (FieldSuggestion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return FieldSuggestion{}, &model.ValidationError{Fields: []string{"name"}}
	}

	s, err := g.suggestFields(ctx, name)
	g.report(KindFields, err)
	return s, err
}

func (g *Gateway) suggestFields(ctx context.Context, name string) (FieldSuggestion, error) {
	content, err := g.completer.Complete(ctx, fieldsPrompt(name), g.FieldsMaxTokens)
	if err != nil {
		return FieldSuggestion{}, asServiceError(err)
	}
	return parseFieldSuggestion(content)
}

// Complete fills d from a suggestion for d.Name. On failure d is left unchanged.
func (g *Gateway) Complete(ctx context.Context, d *model.Draft) error {
	s, err := g.SuggestFields(ctx, d.Name)
	if err != nil {
		return err
	}
	s.ApplyTo(d)
	return nil
}

// Estimate scores item on the requested scale. The daily limit is checked
// before any request is made, and only successful estimations count.
func (g *Gateway) Estimate(ctx context.Context, item model.Item, scale Scale) (Estimation, error) {
	e, err := g.estimate(ctx, item, scale)
	g.report(KindEstimation, err)
	return e, err
}

func (g *Gateway) estimate(ctx context.Context, item model.Item, scale Scale) (Estimation, error) {
	if g.limiter != nil {
		if err := g.limiter.Reserve(); err != nil {
			return Estimation{}, err
		}
	}

	e, err := g.requestEstimation(ctx, item, scale)
	if g.limiter == nil {
		return e, err
	}
	if err != nil {
		g.limiter.Release()
		return Estimation{}, err
	}
	if err := g.limiter.Record(ctx); err != nil {
		slog.Error("failed to persist estimation usage", "error", err)
	}
	return e, nil
}

func (g *Gateway) requestEstimation(ctx context.Context, item model.Item, scale Scale) (Estimation, error) {
	content, err := g.completer.Complete(ctx, estimationPrompt(item, scale), g.EstimationMaxTokens)
	if err != nil {
		return Estimation{}, asServiceError(err)
	}
	return parseEstimation(content, scale)
}

func (g *Gateway) report(kind string, err error) {
	outcome := Kind(err)
	if err != nil {
		slog.Warn("suggestion failed", "kind", kind, "outcome", outcome, "error", err)
	}
	for _, o := range g.observers {
		o(kind, outcome)
	}
}

// asServiceError classifies completer failures that are not already typed.
func asServiceError(err error) error {
	var svc *ServiceUnavailableError
	if errors.As(err, &svc) {
		return err
	}
	return NewServiceUnavailableError(err)
}

package panel

import (
	"context"
	"fmt"
	"strings"

	"golang-stock-dashboard/internal/dashboard/dto"
)

// Payload is any typed backend response that reports its provenance.
type Payload interface {
	Provenance() dto.Provenance
}

// Input names the user input a tab depends on besides the tab itself.
type Input int

const (
	InputNone Input = iota
	InputSymbol
	InputAmount
)

// Request carries the inputs a tab fetch may use.
type Request struct {
	Symbol string
	Amount float64
}

// Tab is one sub-view of a provider, mapped 1:1 to a backend route.
type Tab interface {
	ID() string
	Label() string
	Input() Input
	Fetch(ctx context.Context, req Request) (Payload, error)
	Render(p Payload) View
}

type tab[T Payload] struct {
	id     string
	label  string
	input  Input
	fetch  func(context.Context, Request) (T, error)
	render func(T) View
}

// NewTab binds a fetch and a render function over the same payload type.
func NewTab[T Payload](id, label string, input Input, fetch func(context.Context, Request) (T, error), render func(T) View) Tab {
	return &tab[T]{id: id, label: label, input: input, fetch: fetch, render: render}
}

func (t *tab[T]) ID() string    { return t.id }
func (t *tab[T]) Label() string { return t.label }
func (t *tab[T]) Input() Input  { return t.input }

func (t *tab[T]) Fetch(ctx context.Context, req Request) (Payload, error) {
	v, err := t.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (t *tab[T]) Render(p Payload) View {
	v, ok := p.(T)
	if !ok {
		return View{Title: t.label, Error: fmt.Sprintf("unexpected payload %T for tab %s", p, t.id)}
	}
	view := t.render(v)
	if view.Title == "" {
		view.Title = t.label
	}
	return withProvenance(view, v.Provenance())
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// Package store defines where rule text lives between evaluations.
//
// Only the raw rule text is persisted; parsed trees are rebuilt on demand.
package store

import (
	"context"
	"errors"
)

var ErrInvalidName = errors.New("rule name must not be empty")

// Rule is a persisted rule. ID is assigned on first insert and kept across upserts.
type Rule struct {
	ID   uint32
	Name string
	Text string
}

type Store interface {
	// Store inserts or replaces the rule with the given name.
	Store(ctx context.Context, name, text string) error
	// Fetch returns the text of a rule; ok is false when no such rule exists.
	Fetch(ctx context.Context, name string) (text string, ok bool, err error)
	// List returns every rule ordered by name.
	List(ctx context.Context) ([]Rule, error)
	// Remove deletes a rule. Removing an unknown rule is not an error.
	Remove(ctx context.Context, name string) error

	SetMetadata(ctx context.Context, key, value string) error
	Metadata(ctx context.Context, key string) (value string, ok bool, err error)

	Close() error
}

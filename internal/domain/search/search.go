// Package search defines the full-text lookup surface over project and task
// identities.
package search

import "context"

// Kind discriminates what a search hit refers to.
type Kind string

const (
	KindProject Kind = "project"
	KindTask    Kind = "task"
)

// Result is one full-text search hit.
type Result struct {
	Kind  Kind   `json:"kind"`
	ID    string `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Options filters a search.
type Options struct {
	Kinds  []Kind
	Limit  int
	Offset int
}

// Repository performs full-text lookups.
type Repository interface {
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

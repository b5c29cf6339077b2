// Package store persists posts.
package store

import (
	"sort"

	"github.com/dgallion1/inkwell/internal/post"
)

// Store is the post repository used by the API and the import pipeline.
// Implementations enforce slug uniqueness and assign post numbers.
type Store interface {
	// Put inserts or replaces p. It fails with post.ErrSlugTaken when another
	// post already owns p.Slug. A zero p.Number is assigned on first write.
	Put(p *post.Post) error
	Get(id string) (*post.Post, error)
	GetBySlug(slug string) (*post.Post, error)
	GetByNumber(n int64) (*post.Post, error)
	// List returns posts newest first. An empty status lists every post.
	List(status post.Status) ([]*post.Post, error)
	Delete(id string) error
	Close() error
}

func sortNewestFirst(posts []*post.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].Number > posts[j].Number
	})
}

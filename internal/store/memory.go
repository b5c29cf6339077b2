package store

import (
	"fmt"
	"sync"

	"github.com/dgallion1/inkwell/internal/post"
)

// Memory is an in-process Store. Stored posts are copied on the way in and
// out so callers cannot mutate shared state.
type Memory struct {
	mu    sync.Mutex
	posts map[string]post.Post
	next  int64
}

func NewMemory() *Memory {
	return &Memory{posts: make(map[string]post.Post)}
}

func (m *Memory) Put(p *post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, other := range m.posts {
		if id != p.ID && other.Slug == p.Slug {
			return fmt.Errorf("%w: %q", post.ErrSlugTaken, p.Slug)
		}
	}
	if p.Number == 0 {
		m.next++
		p.Number = m.next
	}
	m.posts[p.ID] = *p
	return nil
}

func (m *Memory) Get(id string) (*post.Post, error) {
	return m.find(func(p *post.Post) bool { return p.ID == id })
}

func (m *Memory) GetBySlug(slug string) (*post.Post, error) {
	return m.find(func(p *post.Post) bool { return p.Slug == slug })
}

func (m *Memory) GetByNumber(n int64) (*post.Post, error) {
	return m.find(func(p *post.Post) bool { return p.Number == n })
}

func (m *Memory) find(fn func(*post.Post) bool) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if fn(&p) {
			cp := p
			return &cp, nil
		}
	}
	return nil, post.ErrNotFound
}

func (m *Memory) List(status post.Status) ([]*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*post.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if status == "" || p.Status == status {
			cp := p
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return post.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *Memory) Close() error { return nil }

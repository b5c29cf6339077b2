package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dgallion1/inkwell/internal/post"
)

const (
	postKeyPrefix   = "post:"
	slugKeyPrefix   = "slug:"
	numberKeyPrefix = "num:"
	sequenceKey     = "seq:post"

	maxConflictRetries = 10
)

// Badger is a Store backed by an on-disk BadgerDB. Posts are stored as JSON
// under post:<id>, with slug:<slug> and num:<n> index keys pointing at the id.
type Badger struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

// OpenBadger opens (or creates) the database in dir.
func OpenBadger(dir string, log *slog.Logger) (*Badger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{log: log.With("component", "badger")}).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	seq, err := db.GetSequence([]byte(sequenceKey), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open post sequence: %w", err)
	}

	log.Info("post store opened", "dir", dir)
	return &Badger{db: db, seq: seq, log: log}, nil
}

// Close releases the sequence lease and closes the database.
func (s *Badger) Close() error {
	if err := s.seq.Release(); err != nil {
		s.log.Warn("release post sequence", "error", err)
	}
	return s.db.Close()
}

// dbUpdate retries transactions that lost an optimistic concurrency race.
func (s *Badger) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debug("badger transaction conflict, retrying", "attempt", i+1)
	}
	return fmt.Errorf("transaction conflict not resolved after %d retries", maxConflictRetries)
}

func (s *Badger) Put(p *post.Post) error {
	if p.Number == 0 {
		n, err := s.seq.Next()
		if err != nil {
			return fmt.Errorf("next post number: %w", err)
		}
		p.Number = int64(n) + 1
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode post %s: %w", p.ID, err)
	}

	return s.dbUpdate(func(txn *badger.Txn) error {
		owner, err := getString(txn, slugKeyPrefix+p.Slug)
		if err != nil {
			return err
		}
		if owner != "" && owner != p.ID {
			return fmt.Errorf("%w: %q", post.ErrSlugTaken, p.Slug)
		}

		prev, err := getPost(txn, p.ID)
		if err != nil && !errors.Is(err, post.ErrNotFound) {
			return err
		}
		if prev != nil && prev.Slug != p.Slug {
			if err := txn.Delete([]byte(slugKeyPrefix + prev.Slug)); err != nil {
				return err
			}
		}

		if err := txn.Set([]byte(postKeyPrefix+p.ID), data); err != nil {
			return err
		}
		if err := txn.Set([]byte(slugKeyPrefix+p.Slug), []byte(p.ID)); err != nil {
			return err
		}
		return txn.Set(numberKey(p.Number), []byte(p.ID))
	})
}

func (s *Badger) Get(id string) (*post.Post, error) {
	var p *post.Post
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = getPost(txn, id)
		return err
	})
	return p, err
}

func (s *Badger) GetBySlug(slug string) (*post.Post, error) {
	return s.getByIndex(slugKeyPrefix + slug)
}

func (s *Badger) GetByNumber(n int64) (*post.Post, error) {
	return s.getByIndex(string(numberKey(n)))
}

func (s *Badger) getByIndex(key string) (*post.Post, error) {
	var p *post.Post
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := getString(txn, key)
		if err != nil {
			return err
		}
		if id == "" {
			return post.ErrNotFound
		}
		p, err = getPost(txn, id)
		return err
	})
	return p, err
}

func (s *Badger) List(status post.Status) ([]*post.Post, error) {
	posts := make([]*post.Post, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(postKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var p post.Post
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				s.log.Warn("skipping undecodable post", "key", string(it.Item().Key()), "error", err)
				continue
			}
			if status == "" || p.Status == status {
				posts = append(posts, &p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (s *Badger) Delete(id string) error {
	return s.dbUpdate(func(txn *badger.Txn) error {
		p, err := getPost(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete([]byte(slugKeyPrefix + p.Slug)); err != nil {
			return err
		}
		if err := txn.Delete(numberKey(p.Number)); err != nil {
			return err
		}
		return txn.Delete([]byte(postKeyPrefix + id))
	})
}

// RunGC runs value log garbage collection every interval until ctx is done.
func (s *Badger) RunGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var err error
			for err == nil {
				err = s.db.RunValueLogGC(0.5)
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Warn("badger gc failed", "error", err)
			}
		}
	}
}

func getPost(txn *badger.Txn, id string) (*post.Post, error) {
	item, err := txn.Get([]byte(postKeyPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, post.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	var p post.Post
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &p)
	}); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", id, err)
	}
	return &p, nil
}

// getString returns the value at key, or "" when the key does not exist.
func getString(txn *badger.Txn, key string) (string, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func numberKey(n int64) []byte {
	return []byte(numberKeyPrefix + strconv.FormatInt(n, 10))
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(f string, v ...any) { l.log.Error(format(f, v)) }

func (l badgerLogger) Warningf(f string, v ...any) { l.log.Warn(format(f, v)) }

// Infof is demoted: badger reports every compaction at info.
func (l badgerLogger) Infof(f string, v ...any) { l.log.Debug(format(f, v)) }

func (l badgerLogger) Debugf(f string, v ...any) { l.log.Debug(format(f, v)) }

func format(f string, v []any) string {
	return strings.TrimSpace(fmt.Sprintf(f, v...))
}

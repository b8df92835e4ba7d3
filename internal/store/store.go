// Package store persists the CMS content as one JSON document.
//
// Every mutation loads the whole document, changes it in memory and writes
// it back atomically. Writers inside the process are serialized; writes from
// other processes (or manual edits) made between load and commit are
// detected and rejected with ErrConflict.
package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"

	"github.com/ryhaapp/ryha-server/internal/domain"
	domainerrors "github.com/ryhaapp/ryha-server/internal/errors"
	"github.com/ryhaapp/ryha-server/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ChangeListener is notified after every committed write.
// Store uses this to keep derived data (the search index) in sync without
// depending on it.
type ChangeListener interface {
	DocumentChanged(ctx context.Context, change Change)
}

// NoopListener ignores all changes.
type NoopListener struct{}

// DocumentChanged implements ChangeListener as a no-op.
func (NoopListener) DocumentChanged(context.Context, Change) {}

// Change describes a committed write.
type Change struct {
	Version int64
	// Document is the committed state. Listeners must not modify it.
	Document *Document
	// ChangedPostIDs holds posts that were added or whose stored fields differ.
	ChangedPostIDs []string
	DeletedPostIDs []string
	// ReferencesChanged is set when an author or category changed, which
	// affects every hydrated post that points at it.
	ReferencesChanged bool
	// Reloaded is set when the file was changed on disk by someone else
	// before this write. The diff only covers this write, so listeners
	// must rebuild from Document.
	Reloaded bool
}

// Options configures a Store.
type Options struct {
	Path   string
	Logger *slog.Logger
}

// Store owns the content document on disk.
type Store struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	listener ChangeListener

	// Digest of the bytes last read or written by this process.
	digestMu   sync.Mutex
	lastDigest [sha256.Size]byte
}

// New opens the document at opts.Path, creating an empty one if needed.
func New(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("store path is required")
	}
	s := &Store{
		path:     opts.Path,
		logger:   logger.OrDiscard(opts.Logger),
		listener: NoopListener{},
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	raw, err := os.ReadFile(opts.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := s.write(NewDocument()); err != nil {
			return nil, err
		}
		s.logger.Info("created empty content document", "path", opts.Path)
	case err != nil:
		return nil, domainerrors.Storage("read content document", err)
	default:
		doc, err := decode(raw)
		if err != nil {
			return nil, err
		}
		s.remember(raw)
		s.logger.Info("content document opened",
			"path", opts.Path,
			"version", doc.Version,
			"posts", len(doc.Posts),
		)
	}

	return s, nil
}

// Path returns the location of the document.
func (s *Store) Path() string {
	return s.path
}

// SetChangeListener registers the listener notified after each commit.
// Set after construction because the search index needs the store first.
func (s *Store) SetChangeListener(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l == nil {
		l = NoopListener{}
	}
	s.listener = l
}

// Load reads the current document.
func (s *Store) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, _, err := s.read()
	return doc, err
}

// Update applies fn to the current document and commits the result.
// If fn returns an error nothing is written and the error is returned as is.
// If the file changed on disk after it was loaded, ErrConflict is returned
// and nothing is written.
func (s *Store) Update(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	doc, digest, err := s.read()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	before := snapshot(doc)
	reloaded := !s.isLastDigest(digest)

	if err := fn(doc); err != nil {
		s.mu.Unlock()
		return err
	}

	_, current, err := s.read()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if current != digest {
		s.mu.Unlock()
		s.logger.Warn("rejected write to content document modified concurrently", "path", s.path)
		return ErrConflict
	}

	doc.Version++
	if err := s.write(doc); err != nil {
		s.mu.Unlock()
		return err
	}
	listener := s.listener
	s.mu.Unlock()

	change := before.diff(doc)
	change.Reloaded = reloaded
	if reloaded {
		s.logger.Info("content document changed on disk before write", "path", s.path)
	}
	s.logger.Debug("content document committed",
		"version", doc.Version,
		"changed_posts", len(change.ChangedPostIDs),
		"deleted_posts", len(change.DeletedPostIDs),
	)
	listener.DocumentChanged(ctx, change)
	return nil
}

// ChangedExternally reports whether the file on disk differs from what this
// process last read or wrote, and remembers the new state if so.
func (s *Store) ChangedExternally() (bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return false, domainerrors.Storage("read content document", err)
	}
	digest := sha256.Sum256(raw)

	s.digestMu.Lock()
	defer s.digestMu.Unlock()
	if digest == s.lastDigest {
		return false, nil
	}
	s.lastDigest = digest
	return true, nil
}

func (s *Store) read() (*Document, [sha256.Size]byte, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewDocument(), [sha256.Size]byte{}, nil
	}
	if err != nil {
		return nil, [sha256.Size]byte{}, domainerrors.Storage("read content document", err)
	}
	doc, err := decode(raw)
	if err != nil {
		return nil, [sha256.Size]byte{}, err
	}
	return doc, sha256.Sum256(raw), nil
}

// write replaces the document atomically: temp file, fsync, rename.
func (s *Store) write(doc *Document) error {
	raw, err := encode(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".data-*.json.tmp")
	if err != nil {
		return domainerrors.Storage("create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return domainerrors.Storage("write content document", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return domainerrors.Storage("sync content document", err)
	}
	if err := tmp.Close(); err != nil {
		return domainerrors.Storage("close content document", err)
	}
	if err := os.Chmod(tmpName, 0o640); err != nil {
		return domainerrors.Storage("chmod content document", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return domainerrors.Storage("replace content document", err)
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}

	s.remember(raw)
	return nil
}

func (s *Store) isLastDigest(digest [sha256.Size]byte) bool {
	s.digestMu.Lock()
	defer s.digestMu.Unlock()
	return digest == s.lastDigest
}

func (s *Store) remember(raw []byte) {
	s.digestMu.Lock()
	s.lastDigest = sha256.Sum256(raw)
	s.digestMu.Unlock()
}

func encode(doc *Document) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, domainerrors.Storage("encode content document", err)
	}
	return append(raw, '\n'), nil
}

func decode(raw []byte) (*Document, error) {
	doc := &Document{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, doc); err != nil {
			return nil, domainerrors.Storage("decode content document", err)
		}
	}
	doc.normalize()
	return doc, nil
}

// docSnapshot is the part of a document needed to describe a change.
type docSnapshot struct {
	posts      map[string]domain.Post
	authors    map[string]domain.Author
	categories map[string]domain.Category
}

func snapshot(doc *Document) docSnapshot {
	snap := docSnapshot{
		posts:      make(map[string]domain.Post, len(doc.Posts)),
		authors:    make(map[string]domain.Author, len(doc.Authors)),
		categories: make(map[string]domain.Category, len(doc.Categories)),
	}
	for _, p := range doc.Posts {
		snap.posts[p.ID] = p.Clone()
	}
	for id, a := range doc.Authors {
		snap.authors[id] = a
	}
	for id, c := range doc.Categories {
		snap.categories[id] = c
	}
	return snap
}

func (snap docSnapshot) diff(doc *Document) Change {
	change := Change{Version: doc.Version, Document: doc}

	seen := make(map[string]bool, len(doc.Posts))
	for _, p := range doc.Posts {
		seen[p.ID] = true
		old, ok := snap.posts[p.ID]
		if !ok || !cmp.Equal(old, p) {
			change.ChangedPostIDs = append(change.ChangedPostIDs, p.ID)
		}
	}
	for id := range snap.posts {
		if !seen[id] {
			change.DeletedPostIDs = append(change.DeletedPostIDs, id)
		}
	}
	slices.Sort(change.DeletedPostIDs)

	if len(snap.authors) != len(doc.Authors) || len(snap.categories) != len(doc.Categories) {
		change.ReferencesChanged = true
		return change
	}
	for id, a := range doc.Authors {
		if old, ok := snap.authors[id]; !ok || old.Name != a.Name {
			change.ReferencesChanged = true
			return change
		}
	}
	for id, c := range doc.Categories {
		if old, ok := snap.categories[id]; !ok || old.Name != c.Name {
			change.ReferencesChanged = true
			return change
		}
	}
	return change
}

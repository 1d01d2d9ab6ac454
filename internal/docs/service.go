package docs

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rcastell/wheelhouse/internal/log"
	"github.com/rcastell/wheelhouse/internal/pubsub"
)

// DefaultDebounce coalesces editor save bursts into one rescan.
const DefaultDebounce = 500 * time.Millisecond

// DefaultDirName is the docs directory name under a project root.
const DefaultDirName = "docs"

// Service owns the docs index for the active project. SetProject and Close
// must be called from a single goroutine; the watch loop only touches the
// index under the mutex and republishes snapshots through the broker.
type Service struct {
	broker   *pubsub.Broker[[]Doc]
	dirName  string
	debounce time.Duration

	mu   sync.RWMutex
	dir  string
	docs []Doc

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewService creates an empty docs service. dirName is the docs directory
// name under the project root; empty means DefaultDirName. Point the service
// at a project with SetProject.
func NewService(dirName string) *Service {
	if dirName == "" {
		dirName = DefaultDirName
	}
	return &Service{
		broker:   pubsub.NewBroker[[]Doc](),
		dirName:  dirName,
		debounce: DefaultDebounce,
	}
}

// Broker exposes index snapshots for subscription. Every rescan publishes
// the full fresh list.
func (s *Service) Broker() *pubsub.Broker[[]Doc] {
	return s.broker
}

// Docs returns the current index.
func (s *Service) Docs() []Doc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Doc, len(s.docs))
	copy(out, s.docs)
	return out
}

// SetProject retargets the index at projectPath's docs directory, stopping
// any previous watch. An empty path clears the index.
func (s *Service) SetProject(projectPath string) error {
	s.stopWatch()

	if projectPath == "" {
		s.setIndex("", nil)
		s.broker.Publish(pubsub.UpdatedEvent, nil)
		return nil
	}

	dir := filepath.Join(projectPath, s.dirName)
	docs, err := Scan(dir)
	if err != nil {
		return err
	}
	s.setIndex(dir, docs)
	s.broker.Publish(pubsub.UpdatedEvent, docs)
	log.Debug(log.CatDocs, "Indexed docs directory", "dir", dir, "count", len(docs))

	if err := s.startWatch(dir); err != nil {
		// The index still serves; it just stops refreshing live.
		log.ErrorErr(log.CatDocs, "Failed to watch docs directory", err, "dir", dir)
	}
	return nil
}

// Close stops the watch loop and the broker.
func (s *Service) Close() {
	s.stopWatch()
	s.broker.Close()
}

func (s *Service) setIndex(dir string, docs []Doc) {
	s.mu.Lock()
	s.dir = dir
	s.docs = docs
	s.mu.Unlock()
}

// applyScan stores docs only if the service still targets dir, so a rescan
// that races a project switch cannot clobber the new index.
func (s *Service) applyScan(dir string, docs []Doc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir != dir {
		return false
	}
	s.docs = docs
	return true
}

func (s *Service) startWatch(dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	s.watcher = fsw
	s.done = make(chan struct{})
	go s.loop(fsw, s.done, dir)
	return nil
}

func (s *Service) stopWatch() {
	if s.watcher == nil {
		return
	}
	close(s.done)
	_ = s.watcher.Close()
	s.watcher = nil
	s.done = nil
}

// loop debounces file system events into rescans.
func (s *Service) loop(fsw *fsnotify.Watcher, done chan struct{}, dir string) {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !isRelevantEvent(event) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(s.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(s.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if !pending {
				continue
			}
			pending = false

			docs, err := Scan(dir)
			if err != nil {
				log.ErrorErr(log.CatDocs, "Failed to rescan docs directory", err, "dir", dir)
				continue
			}
			if s.applyScan(dir, docs) {
				s.broker.Publish(pubsub.UpdatedEvent, docs)
				log.Debug(log.CatDocs, "Docs index refreshed", "dir", dir, "count", len(docs))
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatDocs, "Docs watcher error", err, "dir", dir)

		case <-done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent keeps only markdown mutations. Removes and renames matter
// here: a deleted doc must leave the palette.
func isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Ext(event.Name) == ".md"
}

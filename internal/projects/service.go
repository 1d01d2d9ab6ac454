// Package projects serves the backend's project directory through a
// read-through TTL cache and derives the active working directory from it.
package projects

import (
	"context"
	"time"

	"github.com/rcastell/wheelhouse/internal/backend"
	"github.com/rcastell/wheelhouse/internal/cachemanager"
	"github.com/rcastell/wheelhouse/internal/log"
)

// DefaultTTL bounds how stale a cached directory may get before the next
// read goes back to the backend.
const DefaultTTL = time.Minute

const directoryKey = "projects:directory"

// Fetcher fetches the project directory from the backend.
type Fetcher interface {
	Projects(ctx context.Context) (backend.Directory, error)
}

// Service is the cached project directory.
type Service struct {
	manager     cachemanager.CacheManager[backend.Directory]
	readThrough *cachemanager.ReadThroughCache[backend.Directory, struct{}]
	ttl         time.Duration
}

// NewService creates a directory service over fetcher. A non-positive ttl
// falls back to DefaultTTL.
func NewService(fetcher Fetcher, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	manager := cachemanager.NewInMemoryCacheManager[backend.Directory](
		"project-directory", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	readThrough := cachemanager.NewReadThroughCache[backend.Directory, struct{}](
		manager,
		func(ctx context.Context, _ struct{}) (backend.Directory, error) {
			return fetcher.Projects(ctx)
		},
		false,
	)
	return &Service{
		manager:     manager,
		readThrough: readThrough,
		ttl:         ttl,
	}
}

// Directory returns the project directory, fetching it from the backend
// when the cached copy is missing or expired.
func (s *Service) Directory(ctx context.Context) (backend.Directory, error) {
	return s.readThrough.Get(ctx, directoryKey, struct{}{}, s.ttl)
}

// Refresh drops the cached directory and fetches a fresh one.
func (s *Service) Refresh(ctx context.Context) (backend.Directory, error) {
	s.Flush(ctx)
	return s.Directory(ctx)
}

// Flush drops the cached directory so the next read goes to the backend.
// Called when the push channel signals that the directory changed.
func (s *Service) Flush(ctx context.Context) {
	if err := s.manager.Flush(ctx); err != nil {
		log.ErrorErr(log.CatDirectory, "Failed to flush directory cache", err)
	}
	log.Debug(log.CatDirectory, "Flushed directory cache")
}

// WorkingDir returns the file-system path of the active project, or the
// empty string when no project is active or the active id is unknown.
func WorkingDir(directory backend.Directory) string {
	if directory.ActiveProjectID == "" {
		return ""
	}
	for _, project := range directory.Projects {
		if project.ID == directory.ActiveProjectID {
			return project.Path
		}
	}
	return ""
}

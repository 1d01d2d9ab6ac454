package projects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcastell/wheelhouse/internal/backend"
)

// fakeFetcher counts calls and returns a scripted directory or error.
type fakeFetcher struct {
	directory backend.Directory
	err       error
	calls     int
}

func (f *fakeFetcher) Projects(ctx context.Context) (backend.Directory, error) {
	f.calls++
	if f.err != nil {
		return backend.Directory{}, f.err
	}
	return f.directory, nil
}

func testDirectory() backend.Directory {
	return backend.Directory{
		Projects: []backend.Project{
			{ID: "p1", Name: "Alpha", Path: "/home/user/alpha"},
			{ID: "p2", Name: "Beta", Path: "/home/user/beta"},
		},
		ActiveProjectID: "p1",
	}
}

func TestService_Directory_CachesFetch(t *testing.T) {
	fetcher := &fakeFetcher{directory: testDirectory()}
	service := NewService(fetcher, time.Minute)

	first, err := service.Directory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", first.ActiveProjectID)

	second, err := service.Directory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 1, fetcher.calls, "second read should come from the cache")
}

func TestService_Directory_FetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("backend unreachable")}
	service := NewService(fetcher, time.Minute)

	_, err := service.Directory(context.Background())
	require.Error(t, err)

	// Errors are not cached; the next read tries again.
	_, err = service.Directory(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestService_Refresh_BypassesCache(t *testing.T) {
	fetcher := &fakeFetcher{directory: testDirectory()}
	service := NewService(fetcher, time.Minute)

	_, err := service.Directory(context.Background())
	require.NoError(t, err)

	fetcher.directory.ActiveProjectID = "p2"

	refreshed, err := service.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p2", refreshed.ActiveProjectID)
	assert.Equal(t, 2, fetcher.calls)
}

func TestService_Flush_InvalidatesCache(t *testing.T) {
	fetcher := &fakeFetcher{directory: testDirectory()}
	service := NewService(fetcher, time.Minute)

	_, err := service.Directory(context.Background())
	require.NoError(t, err)

	service.Flush(context.Background())

	_, err = service.Directory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls, "flush should force the next read to fetch")
}

func TestWorkingDir_ActiveProject(t *testing.T) {
	assert.Equal(t, "/home/user/alpha", WorkingDir(testDirectory()))
}

func TestWorkingDir_NoActiveProject(t *testing.T) {
	directory := testDirectory()
	directory.ActiveProjectID = ""
	assert.Equal(t, "", WorkingDir(directory))
}

func TestWorkingDir_UnknownActiveProject(t *testing.T) {
	directory := testDirectory()
	directory.ActiveProjectID = "p9"
	assert.Equal(t, "", WorkingDir(directory))
}

func TestWorkingDir_EmptyDirectory(t *testing.T) {
	assert.Equal(t, "", WorkingDir(backend.Directory{}))
}

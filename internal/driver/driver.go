// Package driver runs the formatter across many files: path expansion,
// a bounded worker pool, the on-disk result cache, and progress events
// for interactive front ends.
package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"pyfmt/internal/format"
)

// Options configures one driver run.
type Options struct {
	Config format.Config
	// Jobs bounds worker parallelism; <=0 means GOMAXPROCS.
	Jobs int
	// NoCache bypasses the disk cache entirely.
	NoCache bool
	// Write rewrites changed files in place. When false the results
	// carry the formatted text and the files are untouched.
	Write bool
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path      string
	Output    string
	Changed   bool
	FromCache bool
	Err       error
}

// Event reports per-file progress to an optional listener.
type Event struct {
	Path      string
	Done      int
	Total     int
	Changed   bool
	FromCache bool
	Err       error
}

// ListFiles expands the argument paths: files are taken as given,
// directories are walked for *.py sources. The result is sorted for a
// deterministic run order.
func ListFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".py") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// FormatPaths formats every file named by paths. Per-file failures land
// in the results; only I/O on the argument paths or cancellation aborts
// the run. events may be nil.
func FormatPaths(ctx context.Context, paths []string, opts Options, events chan<- Event) ([]FileResult, error) {
	files, err := ListFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	var cache *DiskCache
	if !opts.NoCache {
		// A broken cache degrades to formatting everything.
		cache, _ = OpenDiskCache("pyfmt")
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(files))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res := formatOne(path, opts, cache)
			results[i] = res

			if events != nil {
				ev := Event{
					Path:      path,
					Done:      int(done.Add(1)),
					Total:     len(files),
					Changed:   res.Changed,
					FromCache: res.FromCache,
					Err:       res.Err,
				}
				select {
				case events <- ev:
				case <-gctx.Done():
					return gctx.Err()
				}
			} else {
				done.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func formatOne(path string, opts Options, cache *DiskCache) FileResult {
	res := FileResult{Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	key := cacheKey(content, opts.Config.Fingerprint())
	var payload CachePayload
	if hit, err := cache.Get(key, &payload); err == nil && hit {
		res.Output = payload.Output
		res.Changed = payload.Output != string(content)
		res.FromCache = true
	} else {
		out, err := format.Source(path, content, opts.Config)
		if err != nil {
			res.Err = err
			return res
		}
		res.Output = out
		res.Changed = out != string(content)
		_ = cache.Put(key, &CachePayload{Schema: cacheSchemaVersion, Output: out})
	}

	if opts.Write && res.Changed {
		if err := os.WriteFile(path, []byte(res.Output), 0o644); err != nil {
			res.Err = err
		}
	}
	return res
}

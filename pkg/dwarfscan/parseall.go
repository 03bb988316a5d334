package dwarfscan

import (
	"fmt"
	"sync"

	"github.com/coredump-labs/dwarfgraph/pkg/diecursor"
	"github.com/coredump-labs/dwarfgraph/pkg/typegraph"
)

// Result reports the outcome of parsing one file.
type Result struct {
	Path        string
	FileID      typegraph.FileID
	DIEsVisited int
	DIEsSkipped int
	Err         error
}

// OpenFunc opens path and returns a diecursor.Source over it. Callers
// pass stddwarf.Open (or a fake, for tests).
type OpenFunc func(path string) (diecursor.Source, error)

// ParseAll parses every file in paths against a single shared Manager.
// Each file gets its own Parser and its own file id; parsers run
// concurrently, one goroutine per file, since per-file parsing never
// shares state except through the Manager's own synchronized methods.
// Once every parser has returned — successfully or not — ParseAll runs
// Manager.UpdateTypes exactly once, establishing the happens-before
// barrier the deferred id-rewrite pass depends on: no parser may still
// be registering symbols while UpdateTypes rewrites them.
//
// onFileDone, if non-nil, is called once per file as it completes, in
// no particular order; it exists so a caller (the CLI's progress bar)
// can report progress without ParseAll needing to know progressbar
// exists.
func ParseAll(mgr *typegraph.Manager, paths []string, open OpenFunc, onFileDone func(Result)) []Result {
	results := make([]Result, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			r := parseOne(mgr, path, open)
			results[i] = r
			if onFileDone != nil {
				onFileDone(r)
			}
		}(i, path)
	}
	wg.Wait()

	mgr.UpdateTypes()
	return results
}

func parseOne(mgr *typegraph.Manager, path string, open OpenFunc) Result {
	src, err := open(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("open %s: %w", path, err)}
	}
	defer src.Close()

	p := New(mgr, path, src)
	err = p.Parse()
	visited, skipped := p.Stats()
	return Result{
		Path:        path,
		FileID:      p.FileID(),
		DIEsVisited: visited,
		DIEsSkipped: skipped,
		Err:         err,
	}
}

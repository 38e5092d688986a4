// Package filehandler writes rewritten sources back to disk.
package filehandler

import (
	"context"
	"fmt"
	"go/format"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vd09-projects/go-param-elide/internal/log"
)

type Options struct {
	// Gofmt runs go/format over each file before writing. A file that does
	// not format is written unformatted, with a warning.
	Gofmt bool
	// Limit bounds concurrent writes; <= 0 means 8.
	Limit int
}

// WriteFiles writes every file in files concurrently, keeping each file's
// mode. It returns the names written, sorted.
func WriteFiles(ctx context.Context, files map[string][]byte, opts Options) ([]string, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	limit := opts.Limit
	if limit <= 0 {
		limit = 8
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, name := range names {
		src := files[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeOne(name, src, opts.Gofmt)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

func writeOne(name string, src []byte, gofmt bool) error {
	if gofmt {
		formatted, err := format.Source(src)
		if err != nil {
			log.Warningf("gofmt %s: %v; writing unformatted", name, err)
		} else {
			src = formatted
		}
	}
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(name); err == nil {
		mode = fi.Mode().Perm()
	}
	// Write through a temporary file so a failed write leaves the original.
	tmp := name + ".paramelide.tmp"
	if err := os.WriteFile(tmp, src, mode); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, name); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	log.Debugf("wrote %s (%d bytes)", name, len(src))
	return nil
}

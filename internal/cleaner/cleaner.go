// Package cleaner empties the report output directories between runs.
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/robotomize/corpsuite/internal/logging"
)

type Option func(*Cleaner)

func WithLogger(logger logging.Logger) Option {
	return func(c *Cleaner) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithConcurrency(n int) Option {
	return func(c *Cleaner) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

type Cleaner struct {
	fs          afero.Fs
	logger      logging.Logger
	concurrency int
}

func New(fsys afero.Fs, opts ...Option) *Cleaner {
	c := Cleaner{fs: fsys, logger: logging.Discard(), concurrency: 4}
	for _, o := range opts {
		o(&c)
	}

	return &c
}

// Clean removes the contents of every dir and keeps the dirs themselves.
// Missing dirs are skipped. It returns how many entries were removed; entries
// that could not be removed are joined into the error.
func (c *Cleaner) Clean(ctx context.Context, dirs ...string) (int, error) {
	var (
		removed atomic.Int64
		mu      sync.Mutex
		errs    []error
	)

	wg, childCtx := errgroup.WithContext(ctx)
	wg.SetLimit(c.concurrency)

DirLoop:
	for _, dir := range dirs {
		dir := dir
		if dir == "" {
			continue
		}

		select {
		case <-childCtx.Done():
			break DirLoop
		default:
		}

		wg.Go(func() error {
			n, err := c.cleanDir(childCtx, dir)
			removed.Add(int64(n))

			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}

			return nil
		})
	}

	_ = wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		c.logger.Donef("Successfully cleaned all test reports and related directories")
	}

	return int(removed.Load()), errors.Join(errs...)
}

func (c *Cleaner) cleanDir(ctx context.Context, dir string) (int, error) {
	info, err := c.fs.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.logger.Infof("Directory does not exist: %s", dir)
			return 0, nil
		}

		return 0, fmt.Errorf("fs.Stat: %w", err)
	}

	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	c.logger.Infof("Cleaning directory: %s", dir)

	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return 0, fmt.Errorf("afero.ReadDir: %w", err)
	}

	var (
		removed int
		errs    []error
	)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		pth := filepath.Join(dir, entry.Name())
		if err := c.fs.RemoveAll(pth); err != nil {
			c.logger.Warnf("Failed to delete file: %s: %v", pth, err)
			errs = append(errs, fmt.Errorf("fs.RemoveAll %s: %w", pth, err))
			continue
		}

		removed++
		c.logger.Debugf("Deleted file: %s", pth)
	}

	return removed, errors.Join(errs...)
}

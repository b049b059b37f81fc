package exports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pwnholic/taskcard/internal"
)

// Sink delivers a finished artifact to disk, object storage or a webhook.
type Sink interface {
	Save(ctx context.Context, art Artifact) error
}

type SinkFunc func(ctx context.Context, art Artifact) error

func (f SinkFunc) Save(ctx context.Context, art Artifact) error {
	return f(ctx, art)
}

// Discard accepts every artifact and drops it.
var Discard Sink = SinkFunc(func(context.Context, Artifact) error { return nil })

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// DirSink writes artifacts into a directory.
type DirSink struct {
	Dir string
}

func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &DirSink{Dir: dir}, nil
}

func (s *DirSink) Save(ctx context.Context, art Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(art.Name); err != nil {
		return err
	}

	path := filepath.Join(s.Dir, art.Name)
	f, err := os.CreateTemp(s.Dir, art.Name+".*.part")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", art.Name, err)
	}
	tmp := f.Name()
	if err := writeTemp(f, art.Data); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", art.Name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to finalize %s: %w", art.Name, err)
	}
	internal.Info("Saved to %s", path)
	return nil
}

func writeTemp(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// MultiSink hands every artifact to all of its sinks concurrently. Every
// sink is attempted; failures are joined.
type MultiSink []Sink

func (m MultiSink) Save(ctx context.Context, art Artifact) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, s := range m {
		g.Go(func() error {
			if err := s.Save(ctx, art); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if len(errs) > 0 {
		return fmt.Errorf("completed with %d errors: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

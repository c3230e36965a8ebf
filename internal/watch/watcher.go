// Package watch emits paths of PDFs that appear or change under a set of
// directories, for the extraction daemon's continuous mode.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rcwhitaker/caseindex/constants"
)

type Config struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // if true, walk roots and emit existing PDFs first
	Debounce    time.Duration // coalesce rapid write/rename bursts per batch
}

// Start begins watching and returns a channel of PDF paths plus a channel of
// watcher errors. Both close when ctx is cancelled. Paths may be emitted more
// than once; the consumer's resume check makes reprocessing harmless.
// Delivery blocks until the consumer keeps up; no path is dropped.
func Start(ctx context.Context, cfg Config, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no watch roots provided")
	}

	pathCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	var initial []string
	addRoot := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && isPDF(path) {
				initial = append(initial, path)
			}
			return nil
		})
	}
	for _, root := range cfg.Roots {
		if err := addRoot(root); err != nil {
			_ = w.Close()
			return nil, nil, err
		}
	}
	logger.Info("watch.started",
		"roots", cfg.Roots,
		"initial", len(initial),
		"debounce", cfg.Debounce.String())

	// Everything below runs on one goroutine: every send on pathCh happens
	// here, before the deferred close, and pending is never shared.
	go func() {
		defer close(pathCh)
		defer close(errCh)
		defer w.Close()

		emit := func(p string) bool {
			select {
			case pathCh <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		pending := map[string]struct{}{}

		flush := func() bool {
			for p := range pending {
				if !emit(p) {
					return false
				}
				delete(pending, p)
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-timerC:
				timerC = nil
				if !flush() {
					return
				}
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					// New subdirectories need their own watch; Add on a
					// plain file fails and that is fine.
					_ = w.Add(e.Name)
				}
				if isPDF(e.Name) && e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					pending[e.Name] = struct{}{}
					if cfg.Debounce <= 0 {
						if !flush() {
							return
						}
						continue
					}
					if timer == nil {
						timer = time.NewTimer(cfg.Debounce)
					} else {
						// timerC != nil means the old fire was not consumed
						// yet; drain it so Reset starts clean.
						if !timer.Stop() && timerC != nil {
							<-timer.C
						}
						timer.Reset(cfg.Debounce)
					}
					timerC = timer.C
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return pathCh, errCh, nil
}

func isPDF(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ext == constants.ExtPDF
}

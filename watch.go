package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/unitytools/medigen/internal/discover"
)

// debounce coalesces editor save bursts into a single regeneration.
const debounce = 250 * time.Millisecond

// watchAndRegenerate runs one generation, then keeps regenerating whenever
// a source file under inputDir changes, until interrupted. Each
// regeneration is a full independent batch run; a failing run is logged and
// the watch continues.
func watchAndRegenerate(inputDir, outputDir, namespace string, log *zap.SugaredLogger, stdout io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, err := filepath.Abs(inputDir)
	if err != nil {
		return errors.Wrap(err, "resolving input directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer watcher.Close()

	if err := watchTree(watcher, root); err != nil {
		return err
	}

	if _, err := generate(root, outputDir, namespace, log, stdout); err != nil {
		return err
	}
	log.Infow("watching for changes", "input", root)

	return watchLoop(ctx, watcher, root, outputDir, namespace, log, stdout)
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, root, outputDir, namespace string, log *zap.SugaredLogger, stdout io.Writer) error {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			// New directories need their own watches.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchTree(watcher, event.Name); err != nil {
						log.Warnw("watching new directory", "path", event.Name, "error", err)
					}
				}
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("watch error", "error", err)

		case <-timer.C:
			if _, err := generate(root, outputDir, namespace, log, stdout); err != nil {
				log.Errorw("regeneration failed", "error", err)
			}
		}
	}
}

// relevant filters events down to source files and directory creation.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if discover.IsSource(event.Name) {
		return true
	}
	// Possibly a directory; Stat only answers for creations that still exist.
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

// watchTree adds watches for root and every non-skipped directory below it.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && discover.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		return nil
	})
}

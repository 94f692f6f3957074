package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/marrow/pkg/skeleton"
)

// watchDebounce coalesces editor write/rename bursts into one rebuild.
const watchDebounce = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <script>",
	Short: "Recompile the skeleton whenever the script changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		defer w.Close()

		// Watch the directory, not the file: editors replace files by
		// rename, which drops a direct file watch.
		if err := w.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}

		rebuild := func() {
			g, err := loadGraph(path)
			if err != nil {
				log.Error("load failed", zap.Error(err))
				return
			}
			s, err := skeleton.NewCompiler(skeleton.WithLogger(log)).Compile(g)
			if err != nil && s == nil {
				log.Error("compile failed", zap.Error(err))
				return
			}
			log.Info("compiled",
				zap.Int("modules", g.ModuleCount()),
				zap.Int("joints", s.Len()))
		}
		rebuild()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		var timer *time.Timer
		pending := make(chan struct{}, 1)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})
			case <-pending:
				rebuild()
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				log.Error("watch error", zap.Error(err))
			case <-sig:
				log.Info("stopping watch")
				return nil
			}
		}
	},
}

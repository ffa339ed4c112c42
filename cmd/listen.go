package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/device"
	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/journal"
	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/remote"
	"github.com/bnema/inputkit/internal/shortcut"
	"github.com/bnema/inputkit/internal/ui"
)

var (
	listenRecord bool
	listenQuiet  bool
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Bind configured shortcuts and print global input events",
	Long: `Bind every [[shortcuts]] entry of the config file and run its script when
the combination is pressed. Bindings are reloaded when the config file
changes. Events are printed unless --quiet is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		return withSystem(func(sys *device.System) error {
			b := newBinder(ctx, sys.Keyboard.Shortcuts(), scriptRunner(sys))
			defer b.close()
			if err := b.bind(cfg.Shortcuts); err != nil {
				return err
			}

			if listenRecord || cfg.Journal.Enabled {
				stop, err := startRecording(cfg.Journal.Path, sys.Events())
				if err != nil {
					return err
				}
				defer stop()
			}

			if !listenQuiet {
				out := cmd.OutOrStdout()
				sub, err := sys.Events().Subscribe(events.AllTag, func(ev events.Event) {
					fmt.Fprintln(out, ui.FormatEvent(time.Now(), ev))
				})
				if err != nil {
					return err
				}
				defer sys.Events().Unsubscribe(sub)
			}

			config.Watch(func(c *config.Config) {
				logger.Info("Config changed, reloading shortcuts")
				if err := b.rebind(c.Shortcuts); err != nil {
					logger.Warnf("Some shortcuts could not be bound: %v", err)
				}
			}, func(err error) {
				logger.Warnf("Config reload failed, keeping previous shortcuts: %v", err)
			})

			logger.Infof("Listening with %d shortcut(s), press Ctrl+C to stop", b.len())
			<-ctx.Done()
			return nil
		})
	},
}

// startRecording copies the generic channel into the journal at path
func startRecording(path string, source *events.Emitter[events.Event]) (func(), error) {
	db, err := journal.Open(path)
	if err != nil {
		return nil, err
	}
	rec, err := journal.NewRecorder(db, source)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Infof("Recording events to %s (session %s)", path, rec.Session())

	return func() {
		if err := rec.Close(); err != nil {
			logger.Warnf("Failed to stop recorder: %v", err)
		}
		if err := db.Close(); err != nil {
			logger.Warnf("Failed to close journal: %v", err)
		}
	}, nil
}

type binding struct {
	config      config.ShortcutConfig
	combination keys.Combination
	sub         events.Subscription
}

// binder keeps the config shortcuts attached and runs their scripts one at a
// time off the hook goroutine
type binder struct {
	ctx       context.Context
	shortcuts *shortcut.Shortcuts
	run       remote.RunFunc

	mu    sync.Mutex
	bound []binding

	runMu sync.Mutex
	wg    sync.WaitGroup
}

func newBinder(ctx context.Context, shortcuts *shortcut.Shortcuts, run remote.RunFunc) *binder {
	return &binder{ctx: ctx, shortcuts: shortcuts, run: run}
}

// bind attaches every entry. Entries that fail are skipped and reported together.
func (b *binder) bind(list []config.ShortcutConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for i, sc := range list {
		combination, err := keys.ParseCombination(sc.Combination)
		if err != nil {
			errs = append(errs, fmt.Errorf("shortcuts[%d]: %w", i, err))
			continue
		}

		sub, err := b.shortcuts.Attach(combination, func() { b.trigger(sc) })
		if err != nil {
			errs = append(errs, fmt.Errorf("shortcuts[%d]: %w", i, err))
			continue
		}
		b.bound = append(b.bound, binding{config: sc, combination: combination, sub: sub})
		logger.Debugf("Bound %s to %s", sc.Combination, sc.Script)
	}
	return errors.Join(errs...)
}

func (b *binder) unbind() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for _, bd := range b.bound {
		if err := b.shortcuts.Detach(bd.combination, bd.sub.ID); err != nil {
			errs = append(errs, err)
		}
	}
	b.bound = nil
	return errors.Join(errs...)
}

func (b *binder) rebind(list []config.ShortcutConfig) error {
	if err := b.unbind(); err != nil {
		return err
	}
	return b.bind(list)
}

func (b *binder) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bound)
}

func (b *binder) trigger(sc config.ShortcutConfig) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		b.runMu.Lock()
		defer b.runMu.Unlock()

		if b.ctx.Err() != nil {
			return
		}

		logger.Infof("Shortcut %s: running %s", sc.Combination, sc.Script)
		data, err := os.ReadFile(sc.Script)
		if err != nil {
			logger.Errorf("Shortcut %s: %v", sc.Combination, err)
			return
		}
		if _, err := b.run(b.ctx, data); err != nil {
			logger.Errorf("Shortcut %s: %v", sc.Combination, err)
		}
	}()
}

// close detaches everything and waits for running scripts
func (b *binder) close() {
	if err := b.unbind(); err != nil {
		logger.Warnf("Failed to detach shortcuts: %v", err)
	}
	b.wg.Wait()
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().BoolVar(&listenRecord, "record", false, "also store events in the journal")
	listenCmd.Flags().BoolVarP(&listenQuiet, "quiet", "q", false, "do not print events")
}

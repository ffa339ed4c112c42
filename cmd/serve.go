package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/device"
	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/remote"
)

var (
	serveWSAddress  string
	serveSSHAddress string
	serveNoSSH      bool
	serveRecord     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream events over websocket and accept scripts over SSH",
	Long: `Serve a websocket feed of every normalized input event at /events and an
SSH endpoint that runs the JSON script piped into each session:

  ssh -p 52525 localhost < script.json

Only keys listed in the SSH whitelist are accepted unless whitelist-only
mode is disabled in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		wsAddress := cfg.Server.WSAddress
		if serveWSAddress != "" {
			wsAddress = serveWSAddress
		}
		sshAddress := cfg.Server.SSHAddress
		if serveSSHAddress != "" {
			sshAddress = serveSSHAddress
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		return withSystem(func(sys *device.System) error {
			if serveRecord || cfg.Journal.Enabled {
				stop, err := startRecording(cfg.Journal.Path, sys.Events())
				if err != nil {
					return err
				}
				defer stop()
			}

			feed := remote.NewFeed()
			if err := feed.Attach(sys.Events()); err != nil {
				return err
			}
			defer feed.Close()

			httpServer := &http.Server{
				Addr:              wsAddress,
				Handler:           feedMux(feed),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Infof("Event feed listening on ws://%s/events", wsAddress)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- fmt.Errorf("event feed failed: %w", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdownCtx)
			}()

			if !serveNoSSH {
				policy := remote.AuthPolicy{
					Whitelist:     func() []string { return config.Get().Server.SSHWhitelist },
					WhitelistOnly: func() bool { return config.Get().Server.SSHWhitelistOnly },
				}
				sshServer := remote.NewSSHServer(sshAddress, cfg.Server.SSHHostKeyPath, policy, scriptRunner(sys))
				if err := sshServer.Start(ctx); err != nil {
					return err
				}
				defer sshServer.Stop()
			}

			select {
			case <-ctx.Done():
				logger.Info("Shutting down")
				return nil
			case err := <-errCh:
				return err
			}
		})
	},
}

func feedMux(feed *remote.Feed) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/events", feed)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","clients":%d}`, feed.ClientCount())
	})
	return mux
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveWSAddress, "ws-address", "", "event feed address (overrides server.ws_address)")
	serveCmd.Flags().StringVar(&serveSSHAddress, "ssh-address", "", "SSH address (overrides server.ssh_address)")
	serveCmd.Flags().BoolVar(&serveNoSSH, "no-ssh", false, "do not start the SSH script endpoint")
	serveCmd.Flags().BoolVar(&serveRecord, "record", false, "also store events in the journal")
}

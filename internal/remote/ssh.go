package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	gossh "golang.org/x/crypto/ssh"

	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/script"
)

// MaxScriptSize bounds the script read from a session
const MaxScriptSize = 1 << 20

// RunFunc compiles and runs a script document
type RunFunc func(ctx context.Context, data []byte) ([]script.Output, error)

// AuthPolicy decides which public keys may connect
type AuthPolicy struct {
	Whitelist     func() []string
	WhitelistOnly func() bool
}

// Allows reports whether fingerprint may connect
func (p AuthPolicy) Allows(fingerprint string) bool {
	if p.Whitelist != nil {
		for _, fp := range p.Whitelist() {
			if fp == fingerprint {
				return true
			}
		}
	}
	if p.WhitelistOnly == nil {
		return false
	}
	return !p.WhitelistOnly()
}

// SSHServer runs scripts piped over SSH, one script per session:
//
//	ssh -p 52525 host < script.json
type SSHServer struct {
	address     string
	hostKeyPath string
	policy      AuthPolicy
	run         RunFunc
	sshServer   *ssh.Server

	// scripts drive one desktop, so sessions take turns
	runMu sync.Mutex

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSSHServer creates a new SSH script server
func NewSSHServer(address, hostKeyPath string, policy AuthPolicy, run RunFunc) *SSHServer {
	return &SSHServer{
		address:     address,
		hostKeyPath: hostKeyPath,
		policy:      policy,
		run:         run,
	}
}

// Start begins listening for SSH connections
func (s *SSHServer) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.hostKeyPath), 0700); err != nil {
		return fmt.Errorf("failed to create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(s.address),
		wish.WithHostKeyPath(s.hostKeyPath),
		wish.WithPublicKeyAuth(s.publicKeyAuth),
		wish.WithMiddleware(
			s.scriptHandler(),
			s.loggingMiddleware(),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create SSH server: %w", err)
	}
	s.sshServer = server

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		logger.Infof("SSH server listening on %s", s.address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Errorf("SSH server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop shuts down the SSH server
func (s *SSHServer) Stop() {
	s.stopOnce.Do(func() {
		if s.sshServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.sshServer.Shutdown(ctx)
		}
		s.wg.Wait()
	})
}

func (s *SSHServer) publicKeyAuth(ctx ssh.Context, key ssh.PublicKey) bool {
	fingerprint := gossh.FingerprintSHA256(key)
	allowed := s.policy.Allows(fingerprint)
	logger.Infof("SSH authentication attempt addr=%s user=%s key=%s allowed=%v", ctx.RemoteAddr(), ctx.User(), fingerprint, allowed)
	return allowed
}

func (s *SSHServer) loggingMiddleware() wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			logger.Debugf("SSH session started: user=%s addr=%s", sess.User(), sess.RemoteAddr())
			h(sess)
			logger.Debugf("SSH session ended: addr=%s", sess.RemoteAddr())
		}
	}
}

func (s *SSHServer) scriptHandler() wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			s.runMu.Lock()
			code := Execute(sess.Context(), sess, sess, sess.Stderr(), s.run)
			s.runMu.Unlock()

			_ = sess.Exit(code)
			h(sess)
		}
	}
}

// Execute reads one script from in, runs it and writes each output as a
// JSON line to out. It returns the session exit code.
func Execute(ctx context.Context, in io.Reader, out, errOut io.Writer, run RunFunc) int {
	data, err := io.ReadAll(io.LimitReader(in, MaxScriptSize+1))
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to read script: %v\n", err)
		return 1
	}
	if len(data) > MaxScriptSize {
		fmt.Fprintf(errOut, "error: script larger than %d bytes\n", MaxScriptSize)
		return 1
	}

	outputs, err := run(ctx, data)
	enc := json.NewEncoder(out)
	for _, o := range outputs {
		_ = enc.Encode(o)
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}
	return 0
}

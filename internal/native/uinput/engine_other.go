//go:build !linux

package uinput

import "github.com/bnema/inputkit/internal/native"

// DefaultDevicePath is where the kernel exposes uinput.
const DefaultDevicePath = "/dev/uinput"

// Available always fails outside Linux.
func Available(string) error {
	return native.ErrNotSupported
}

// Engine is never constructed outside Linux.
type Engine struct {
	native.Engine
}

// NewEngine always fails outside Linux.
func NewEngine(string) (*Engine, error) {
	return nil, native.ErrNotSupported
}

func (e *Engine) Close() error {
	return nil
}

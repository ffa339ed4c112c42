// Package device provides the pointer, keyboard and display facades.
package device

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every *InvalidArgumentError
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError reports a parameter that failed validation. No native
// call is made when it is returned.
type InvalidArgumentError struct {
	Param    string
	Expected string
	Got      any
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: expected %s, got %v", e.Param, e.Expected, e.Got)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalid(param, expected string, got any) error {
	return &InvalidArgumentError{Param: param, Expected: expected, Got: got}
}

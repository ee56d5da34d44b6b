package server

import (
	"errors"
	"fmt"
)

var errPortRange = errors.New("port out of range 0-65535")

// BindError reports that the listening socket could not be acquired: the
// port is taken, not permitted or out of range.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

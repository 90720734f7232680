package kasa

import (
	"fmt"

	"github.com/juju/errors"
)

// TransportError covers dial, send and receive failures talking to a plug:
// refused connection, timeout, empty read. Callers are expected to treat
// it as transient.
type TransportError struct {
	Addr string
	Err  error
}

func (e TransportError) Error() string { return fmt.Sprintf("transport %s: %s", e.Addr, e.Err) }

// ProtocolError means the device answered with bytes that do not decode
// into the expected document.
type ProtocolError struct {
	Addr string
	Msg  string
}

func (e ProtocolError) Error() string { return fmt.Sprintf("protocol %s: %s", e.Addr, e.Msg) }

// IsTransport sees through juju/errors annotation.
func IsTransport(err error) bool {
	_, ok := errors.Cause(err).(TransportError)
	return ok
}

func IsProtocol(err error) bool {
	_, ok := errors.Cause(err).(ProtocolError)
	return ok
}

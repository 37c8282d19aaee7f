// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

import (
	"fmt"
)

// Transport represents a connection to a TPM device. An implementation
// carries one complete command packet to the device and returns one complete
// response packet. Implementations do not interpret the bytes they carry and
// do not retry on their own.
type Transport interface {
	// Submit sends the supplied command packet to the device and blocks
	// until a complete response packet is available. The returned slice is
	// owned by the caller.
	Submit(command []byte) ([]byte, error)

	// Close closes the connection to the device.
	Close() error
}

// TransportUnavailableError is returned from Transport.Submit if the device
// backing the transport does not exist or has gone away. The condition is
// fatal for the transport - subsequent submissions will not succeed.
type TransportUnavailableError struct {
	// Path identifies the device that is unavailable, in a form that is
	// specific to the transport implementation.
	Path string
}

func (e *TransportUnavailableError) Error() string {
	return fmt.Sprintf("TPM device %s is not available", e.Path)
}

// TransportTimeoutError is returned from Transport.Submit if the device did
// not produce a response within the transport's deadline. The command may or
// may not have executed.
type TransportTimeoutError struct{}

func (e *TransportTimeoutError) Error() string {
	return "timeout whilst waiting for a response from the TPM device"
}

// TransportError is returned from any TPMContext method if communication
// with the device fails for a reason other than the device being absent or
// unresponsive. It wraps the underlying cause.
type TransportError struct {
	Op  string // The operation that caused the error
	err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cannot complete %s operation on transport: %v", e.Op, e.err)
}

func (e *TransportError) Unwrap() error {
	return e.err
}

// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

//go:build linux

/*
Package linux provides an interface for communicating with TPMs using a Linux
TPM character device. It exists so that the same code that will run in a
pre-OS environment can be exercised against real hardware from a running
system, via either the raw device or the kernel resource manager.
*/
package linux

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"

	"github.com/ChocolateLoverRaj/uefi-tpm2"
)

const (
	// DefaultDevicePath is the path of the raw TPM character device. Commands
	// submitted through it occupy the TPM until their response is read.
	DefaultDevicePath = "/dev/tpm0"

	// DefaultResourceManagedDevicePath is the path of the kernel's TPM
	// resource manager.
	DefaultResourceManagedDevicePath = "/dev/tpmrm0"
)

// DefaultTimeout is the amount of time to wait for a response from the device
// before Submit gives up with a *tpm2.TransportTimeoutError.
const DefaultTimeout = 30 * time.Second

const maxResponseSize = 4096

// Transport represents a connection to a TPM character device. It implements
// tpm2.Transport.
type Transport struct {
	fd      int
	path    string
	timeout time.Duration
}

// SetTimeout adjusts the amount of time Submit waits for a response before
// returning a *tpm2.TransportTimeoutError. A negative duration means wait
// forever.
func (t *Transport) SetTimeout(timeout time.Duration) {
	t.timeout = timeout
}

// Submit implements tpm2.Transport.Submit. The device expects one complete
// command packet per write and returns one complete response packet per read.
func (t *Transport) Submit(command []byte) ([]byte, error) {
	if t.fd < 0 {
		return nil, &tpm2.TransportUnavailableError{Path: t.path}
	}

	n, err := ignoringEINTR(func() (int, error) {
		return unix.Write(t.fd, command)
	})
	switch {
	case err == unix.ENODEV:
		return nil, &tpm2.TransportUnavailableError{Path: t.path}
	case err != nil:
		return nil, xerrors.Errorf("cannot write command to %s: %w", t.path, err)
	case n < len(command):
		return nil, fmt.Errorf("short write of command to %s (%d of %d bytes)", t.path, n, len(command))
	}

	if err := t.pollResponse(); err != nil {
		return nil, err
	}

	buf := make([]byte, maxResponseSize)
	n, err = ignoringEINTR(func() (int, error) {
		return unix.Read(t.fd, buf)
	})
	switch {
	case err == unix.ENODEV:
		return nil, &tpm2.TransportUnavailableError{Path: t.path}
	case err != nil:
		return nil, xerrors.Errorf("cannot read response from %s: %w", t.path, err)
	}

	return buf[:n], nil
}

// pollResponse waits for the device to have a response ready, bounded by the
// transport's timeout.
func (t *Transport) pollResponse() error {
	timeout := int(t.timeout / time.Millisecond)
	if t.timeout < 0 {
		timeout = -1
	}

	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, timeout)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return xerrors.Errorf("cannot poll %s: %w", t.path, err)
		case n == 0:
			return &tpm2.TransportTimeoutError{}
		case fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0:
			return &tpm2.TransportUnavailableError{Path: t.path}
		default:
			return nil
		}
	}
}

// Close implements tpm2.Transport.Close.
func (t *Transport) Close() error {
	if t.fd < 0 {
		return nil
	}
	fd := t.fd
	t.fd = -1
	return unix.Close(fd)
}

func ignoringEINTR(fn func() (int, error)) (int, error) {
	for {
		n, err := fn()
		if err != unix.EINTR {
			return n, err
		}
	}
}

// OpenDevice attempts to open the TPM character device at the specified path.
// If the device does not exist, a *tpm2.TransportUnavailableError is
// returned.
//
// If successful, it returns a new Transport instance which can be passed to
// tpm2.NewTPMContext.
func OpenDevice(path string) (*Transport, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	switch {
	case err == unix.ENOENT || err == unix.ENODEV:
		return nil, &tpm2.TransportUnavailableError{Path: path}
	case err != nil:
		return nil, xerrors.Errorf("cannot open %s: %w", path, err)
	}

	return &Transport{fd: fd, path: path, timeout: DefaultTimeout}, nil
}

// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

/*
Package mssim provides an interface for communicating with a TPM simulator
that implements the Microsoft TPM2 simulator interface. It is intended for
testing code against a software TPM before it runs against real hardware.
*/
package mssim

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"golang.org/x/xerrors"

	"github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
)

const (
	cmdPowerOn         uint32 = 1
	cmdPowerOff        uint32 = 2
	cmdPhysPresOn      uint32 = 3
	cmdPhysPresOff     uint32 = 4
	cmdHashStart       uint32 = 5
	cmdHashData        uint32 = 6
	cmdHashEnd         uint32 = 7
	cmdTPMSendCommand  uint32 = 8
	cmdCancelOn        uint32 = 9
	cmdCancelOff       uint32 = 10
	cmdNVOn            uint32 = 11
	cmdNVOff           uint32 = 12
	cmdRemoteHandshake uint32 = 15
	cmdReset           uint32 = 17
	cmdRestart         uint32 = 18
	cmdSessionEnd      uint32 = 20
	cmdStop            uint32 = 21
	cmdTestFailureMode uint32 = 30
)

// DefaultPort is the port of the TPM command channel of a simulator running
// with its default configuration. The platform channel runs on the next port
// number.
const DefaultPort uint = 2321

const maxResponseSize = 4096

// PlatformCommandError corresponds to an error code in response to a platform
// command executed on a TPM simulator.
type PlatformCommandError struct {
	commandCode uint32
	Code        uint32
}

func (e *PlatformCommandError) Error() string {
	return fmt.Sprintf("received error code %d in response to platform command %d", e.Code, e.commandCode)
}

// Transport represents a connection to a TPM simulator. It implements
// tpm2.Transport.
type Transport struct {
	tpm      net.Conn
	platform net.Conn
	locality uint8 // Locality of commands submitted to the simulator on this interface
}

// Submit implements tpm2.Transport.Submit. It wraps the supplied command
// packet in the simulator's framing on the TPM command channel and strips the
// framing from the response.
func (t *Transport) Submit(command []byte) ([]byte, error) {
	buf := mu.MustMarshalToBytes(cmdTPMSendCommand, t.locality, uint32(len(command)), mu.RawBytes(command))
	if _, err := t.tpm.Write(buf); err != nil {
		return nil, xerrors.Errorf("cannot send command: %w", err)
	}

	var size uint32
	if err := binary.Read(t.tpm, binary.BigEndian, &size); err != nil {
		return nil, xerrors.Errorf("cannot read response size: %w", err)
	}
	if size > maxResponseSize {
		return nil, fmt.Errorf("invalid response size (%d bytes)", size)
	}

	response := make([]byte, size)
	if _, err := io.ReadFull(t.tpm, response); err != nil {
		return nil, xerrors.Errorf("cannot read response: %w", err)
	}

	// Responses are followed by a 4 byte trailer which is always zero.
	var trash uint32
	if err := binary.Read(t.tpm, binary.BigEndian, &trash); err != nil {
		return nil, xerrors.Errorf("cannot read response trailer: %w", err)
	}

	return response, nil
}

// Close implements tpm2.Transport.Close. It ends the simulator session on
// both channels before closing the connections.
func (t *Transport) Close() (err error) {
	binary.Write(t.platform, binary.BigEndian, cmdSessionEnd)
	binary.Write(t.tpm, binary.BigEndian, cmdSessionEnd)
	if e := t.platform.Close(); e != nil {
		err = xerrors.Errorf("cannot close platform channel: %w", e)
	}
	if e := t.tpm.Close(); e != nil {
		err = xerrors.Errorf("cannot close TPM command channel: %w", e)
	}
	return err
}

// Reset submits the reset command on the platform connection, which initiates
// a reset of the TPM simulator and results in the execution of _TPM_Init().
func (t *Transport) Reset() error {
	return t.platformCommand(cmdReset)
}

// Stop submits a stop command on both the TPM command and platform channels,
// which initiates a shutdown of the TPM simulator.
func (t *Transport) Stop() error {
	if err := binary.Write(t.platform, binary.BigEndian, cmdStop); err != nil {
		return err
	}
	return binary.Write(t.tpm, binary.BigEndian, cmdStop)
}

func (t *Transport) platformCommand(cmd uint32) error {
	if err := binary.Write(t.platform, binary.BigEndian, cmd); err != nil {
		return xerrors.Errorf("cannot send command: %w", err)
	}

	var resp uint32
	if err := binary.Read(t.platform, binary.BigEndian, &resp); err != nil {
		return xerrors.Errorf("cannot read response to command: %w", err)
	}
	if resp != 0 {
		return &PlatformCommandError{cmd, resp}
	}

	return nil
}

// OpenConnection attempts to open a connection to a TPM simulator on the
// specified host and port. The port argument corresponds to the TPM command
// server. The simulator will also provide a platform server on port+1. If
// host is an empty string, it defaults to "localhost".
//
// If the simulator is not listening on the specified ports, a
// *tpm2.TransportUnavailableError is returned.
//
// If successful, it returns a new Transport instance which can be passed to
// tpm2.NewTPMContext.
func OpenConnection(host string, port uint) (*Transport, error) {
	if host == "" {
		host = "localhost"
	}

	tpmAddress := fmt.Sprintf("%s:%d", host, port)
	platformAddress := fmt.Sprintf("%s:%d", host, port+1)

	t := new(Transport)
	t.locality = 0

	tpm, err := net.Dial("tcp", tpmAddress)
	if err != nil {
		return nil, &tpm2.TransportUnavailableError{Path: tpmAddress}
	}
	t.tpm = tpm

	platform, err := net.Dial("tcp", platformAddress)
	if err != nil {
		t.tpm.Close()
		return nil, &tpm2.TransportUnavailableError{Path: platformAddress}
	}
	t.platform = platform

	if err := t.platformCommand(cmdPowerOn); err != nil {
		t.Close()
		return nil, xerrors.Errorf("cannot complete power on command: %w", err)
	}
	if err := t.platformCommand(cmdNVOn); err != nil {
		t.Close()
		return nil, xerrors.Errorf("cannot complete NV on command: %w", err)
	}

	return t, nil
}

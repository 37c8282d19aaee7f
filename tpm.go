// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

import (
	"fmt"
	"io"

	"golang.org/x/xerrors"

	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
)

func wrapTransportError(op string, err error) error {
	var unavail *TransportUnavailableError
	var timeout *TransportTimeoutError
	switch {
	case xerrors.As(err, &unavail):
		return err
	case xerrors.As(err, &timeout):
		return err
	default:
		return &TransportError{op, err}
	}
}

// CommandHandleContext associates a HandleContext with the authorization
// requirements of the corresponding command handle.
type CommandHandleContext struct {
	handle  HandleContext
	session SessionContext
	auth    bool
}

// UseResourceContextWithAuth creates a CommandHandleContext for a handle that
// requires authorization. The supplied session is used to authorize the
// resource - a nil session selects a plaintext password authorization using
// the authorization value of the resource.
func UseResourceContextWithAuth(resource ResourceContext, session SessionContext) *CommandHandleContext {
	return &CommandHandleContext{handle: resource, session: session, auth: true}
}

// UseHandleContext creates a CommandHandleContext for a handle that does not
// require authorization.
func UseHandleContext(handle HandleContext) *CommandHandleContext {
	return &CommandHandleContext{handle: handle}
}

// TPMContext is the main entry point by which commands are executed on a TPM
// device. Commands are issued through the Transport supplied to NewTPMContext.
//
// TPMContext is not safe to use concurrently - the environments this library
// targets execute a single control flow, and a TPM processes one command at a
// time.
type TPMContext struct {
	transport          Transport
	permanentResources map[Handle]ResourceContext
	nonceSource        io.Reader
}

// NewTPMContext creates a new instance of TPMContext, which communicates with
// the TPM using the supplied Transport. The TPMContext takes ownership of the
// transport - it is closed by TPMContext.Close.
func NewTPMContext(transport Transport) *TPMContext {
	if transport == nil {
		panic("nil transport")
	}

	return &TPMContext{
		transport:          transport,
		permanentResources: make(map[Handle]ResourceContext),
		nonceSource:        defaultNonceSource}
}

// Close closes the transport.
func (t *TPMContext) Close() error {
	if err := t.transport.Close(); err != nil {
		return &TransportError{"close", err}
	}
	return nil
}

// SetNonceSource sets the source from which caller nonces for sessions are
// drawn. The default is the platform random source. Pre-OS environments that
// have no platform random source should install one created with
// NewDRBGNonceSource, seeded from entropy collected by the firmware.
func (t *TPMContext) SetNonceSource(r io.Reader) {
	if r == nil {
		panic("nil nonce source")
	}
	t.nonceSource = r
}

// RunCommandBytes submits the supplied command packet to the TPM and returns
// the response packet without any processing of its contents.
func (t *TPMContext) RunCommandBytes(packet CommandPacket) (ResponsePacket, error) {
	resp, err := t.transport.Submit(packet)
	if err != nil {
		return nil, wrapTransportError("submit", err)
	}
	return ResponsePacket(resp), nil
}

// RunCommand executes one full command and response cycle for the specified
// command code.
//
// The caller supplies a CommandHandleContext for each of the command's
// handles, created with UseResourceContextWithAuth for handles that require
// authorization and UseHandleContext for those that don't. The command
// parameters are supplied via cParams and are serialized to the TPM wire
// format in the order provided.
//
// If the response contains a handle, a pointer to which it is unmarshalled
// must be supplied via rHandle, else rHandle must be nil. Pointers to which
// the response parameters are unmarshalled are supplied via rParams.
//
// Additional sessions that don't provide authorization can be supplied via
// extraSessions.
//
// The command is submitted to the transport exactly once. If the response
// indicates that the command could not complete, the corresponding error is
// returned to the caller, who owns any retry policy.
func (t *TPMContext) RunCommand(commandCode CommandCode, cHandles []*CommandHandleContext, cParams []interface{}, rHandle *Handle, rParams []interface{}, extraSessions ...SessionContext) error {
	var handles HandleList
	var handleNames []Name
	sp := new(sessionParams)

	for i, h := range cHandles {
		if h == nil || h.handle == nil {
			return fmt.Errorf("missing command handle at index %d", i)
		}

		handles = append(handles, h.handle.Handle())
		handleNames = append(handleNames, h.handle.Name())

		if !h.auth {
			continue
		}

		resource, isResource := h.handle.(ResourceContext)
		if !isResource {
			return fmt.Errorf("command handle at index %d cannot be used for authorization", i)
		}
		if err := sp.appendSessionForResource(h.session, resource); err != nil {
			return xerrors.Errorf("cannot process authorization for command handle at index %d: %w", i, err)
		}
	}

	for i, session := range extraSessions {
		if err := sp.appendExtraSession(session); err != nil {
			return xerrors.Errorf("cannot process non-auth session at index %d: %w", i, err)
		}
	}

	cpBytes, err := mu.MarshalToBytes(cParams...)
	if err != nil {
		return xerrors.Errorf("cannot marshal parameters for command %s: %w", commandCode, err)
	}

	var authArea []AuthCommand
	if len(sp.sessions) > 0 {
		authArea, err = sp.buildCommandAuthArea(t.nonceSource, commandCode, handleNames, cpBytes)
		if err != nil {
			return xerrors.Errorf("cannot build auth area for command %s: %w", commandCode, err)
		}
	}

	resp, err := t.RunCommandBytes(MarshalCommandPacket(commandCode, handles, authArea, cpBytes))
	if err != nil {
		return err
	}

	rc, rpBytes, authResponses, err := resp.Unmarshal(rHandle)
	if err != nil {
		return &InvalidResponseError{commandCode, fmt.Sprintf("cannot unmarshal response packet: %v", err)}
	}

	if err := DecodeResponseCode(commandCode, rc); err != nil {
		return sp.handleSessionError(err)
	}

	if len(sp.sessions) > 0 {
		if err := sp.processResponseAuthArea(authResponses, commandCode, rc, rpBytes); err != nil {
			return &InvalidResponseError{commandCode, fmt.Sprintf("cannot process auth area in response: %v", err)}
		}
	}

	n, err := mu.UnmarshalFromBytes(rpBytes, rParams...)
	if err != nil {
		return &InvalidResponseError{commandCode, fmt.Sprintf("cannot unmarshal response parameters: %v", err)}
	}
	if n < len(rpBytes) {
		return &InvalidResponseError{commandCode, fmt.Sprintf("%d trailing byte(s) in response parameters", len(rpBytes)-n)}
	}

	return nil
}

// isReadOnlyTimeout indicates whether the error from a command that doesn't
// mutate TPM state is a transport timeout, in which case the command can be
// resubmitted safely.
func isReadOnlyTimeout(err error) bool {
	var timeout *TransportTimeoutError
	return xerrors.As(err, &timeout)
}

// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package testutil

import (
	"errors"
	"fmt"

	"github.com/ChocolateLoverRaj/uefi-tpm2"
)

type commandInfo struct {
	cmdHandles int
	rspHandle  bool
}

var commandInfoMap = map[tpm2.CommandCode]commandInfo{
	tpm2.CommandStartup:          {0, false},
	tpm2.CommandShutdown:         {0, false},
	tpm2.CommandStirRandom:       {0, false},
	tpm2.CommandFlushContext:     {0, false},
	tpm2.CommandStartAuthSession: {2, true},
	tpm2.CommandGetRandom:        {0, false},
	tpm2.CommandQuote:            {1, false},
	tpm2.CommandPCRRead:          {0, false},
	tpm2.CommandPCRExtend:        {1, false},
	tpm2.CommandPCREvent:         {1, false},
}

// CommandRecord provides information about a command executed via a Transport.
type CommandRecord struct {
	CommandPacket  tpm2.CommandPacket
	ResponsePacket tpm2.ResponsePacket
}

// GetCommandCode returns the command code of the recorded command.
func (r *CommandRecord) GetCommandCode() (tpm2.CommandCode, error) {
	return r.CommandPacket.GetCommandCode()
}

// UnmarshalCommand unmarshals the recorded command packet, returning the
// handles, auth area and parameters. The parameters will still be in the TPM
// wire format.
func (r *CommandRecord) UnmarshalCommand() (handles tpm2.HandleList, authArea []tpm2.AuthCommand, parameters []byte, err error) {
	code, err := r.GetCommandCode()
	if err != nil {
		return nil, nil, nil, err
	}
	info, known := commandInfoMap[code]
	if !known {
		return nil, nil, nil, fmt.Errorf("unknown command code %v", code)
	}
	return r.CommandPacket.Unmarshal(info.cmdHandles)
}

// UnmarshalResponse unmarshals the recorded response packet, returning the
// response code, handle, parameters and auth area. The parameters will still
// be in the TPM wire format. If the command does not return a handle, the
// returned handle is tpm2.HandleUnassigned.
func (r *CommandRecord) UnmarshalResponse() (rc tpm2.ResponseCode, handle tpm2.Handle, parameters []byte, authArea []tpm2.AuthResponse, err error) {
	handle = tpm2.HandleUnassigned

	code, err := r.GetCommandCode()
	if err != nil {
		return 0, handle, nil, nil, err
	}
	info, known := commandInfoMap[code]
	if !known {
		return 0, handle, nil, nil, fmt.Errorf("unknown command code %v", code)
	}

	var pHandle *tpm2.Handle
	if info.rspHandle {
		pHandle = &handle
	}

	rc, parameters, authArea, err = r.ResponsePacket.Unmarshal(pHandle)
	if err != nil {
		return 0, handle, nil, nil, err
	}
	return rc, handle, parameters, authArea, nil
}

// Transport is a tpm2.Transport that proxies another transport and records
// the commands submitted through it.
type Transport struct {
	Unwrap func() tpm2.Transport // Access the underlying transport

	CommandLog []*CommandRecord
}

// WrapTransport returns a new Transport that records every command and
// response that passes through the supplied transport.
func WrapTransport(transport tpm2.Transport) *Transport {
	return &Transport{Unwrap: func() tpm2.Transport { return transport }}
}

// Submit implements tpm2.Transport.Submit.
func (t *Transport) Submit(command []byte) ([]byte, error) {
	response, err := t.Unwrap().Submit(command)
	if err != nil {
		return nil, err
	}
	t.CommandLog = append(t.CommandLog, &CommandRecord{
		CommandPacket:  append(tpm2.CommandPacket(nil), command...),
		ResponsePacket: append(tpm2.ResponsePacket(nil), response...)})
	return response, nil
}

// Close implements tpm2.Transport.Close.
func (t *Transport) Close() error {
	return t.Unwrap().Close()
}

// ScriptError is recorded by a ScriptedTransport when the commands submitted
// to it diverge from its script.
type ScriptError struct {
	msg string
}

func (e *ScriptError) Error() string {
	return "unexpected command: " + e.msg
}

type scriptedExchange struct {
	command  tpm2.CommandCode
	response []byte
	err      error
}

// ScriptedTransport is a tpm2.Transport that isn't backed by any TPM
// implementation. It responds to each submitted command with the next canned
// response in its script, which makes it possible to test response processing
// paths, including malformed responses that a real implementation would never
// produce.
type ScriptedTransport struct {
	CommandLog []*CommandRecord

	script []*scriptedExchange
	closed bool
}

// NewScriptedTransport returns a new ScriptedTransport with an empty script.
func NewScriptedTransport() *ScriptedTransport {
	return new(ScriptedTransport)
}

// QueueResponse appends a canned response packet to the script. The supplied
// command code must match the next submitted command.
func (t *ScriptedTransport) QueueResponse(command tpm2.CommandCode, response []byte) {
	t.script = append(t.script, &scriptedExchange{command: command, response: response})
}

// QueueError appends a transport error to the script. The next submitted
// command fails with the supplied error.
func (t *ScriptedTransport) QueueError(command tpm2.CommandCode, err error) {
	t.script = append(t.script, &scriptedExchange{command: command, err: err})
}

// Submit implements tpm2.Transport.Submit.
func (t *ScriptedTransport) Submit(command []byte) ([]byte, error) {
	if t.closed {
		return nil, errors.New("transport is closed")
	}
	if len(t.script) == 0 {
		return nil, &ScriptError{"no more scripted responses"}
	}

	next := t.script[0]
	t.script = t.script[1:]

	code, err := tpm2.CommandPacket(command).GetCommandCode()
	if err != nil {
		return nil, &ScriptError{fmt.Sprintf("cannot determine command code: %v", err)}
	}
	if code != next.command {
		return nil, &ScriptError{fmt.Sprintf("got command %v, scripted %v", code, next.command)}
	}

	if next.err != nil {
		return nil, next.err
	}

	t.CommandLog = append(t.CommandLog, &CommandRecord{
		CommandPacket:  append(tpm2.CommandPacket(nil), command...),
		ResponsePacket: append(tpm2.ResponsePacket(nil), next.response...)})
	return next.response, nil
}

// Close implements tpm2.Transport.Close.
func (t *ScriptedTransport) Close() error {
	t.closed = true
	return nil
}

// RemainingResponses returns the number of scripted exchanges that have not
// been consumed.
func (t *ScriptedTransport) RemainingResponses() int {
	return len(t.script)
}

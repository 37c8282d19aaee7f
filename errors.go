// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

import (
	"bytes"
	"fmt"

	"golang.org/x/xerrors"
)

const (
	// AnyCommandCode is used to match any command code when using
	// {As,Is}TPMError, {As,Is}TPMHandleError, {As,Is}TPMParameterError,
	// {As,Is}TPMSessionError and {As,Is}TPMWarning.
	AnyCommandCode CommandCode = 0xc0000000

	// AnyErrorCode is used to match any error code when using {As,Is}TPMError,
	// {As,Is}TPMHandleError, {As,Is}TPMParameterError and {As,Is}TPMSessionError.
	AnyErrorCode ErrorCode = 0xff

	// AnyHandleIndex is used to match any handle when using {As,Is}TPMHandleError.
	AnyHandleIndex int = -1

	// AnyParameterIndex is used to match any parameter when using
	// {As,Is}TPMParameterError.
	AnyParameterIndex int = -1

	// AnySessionIndex is used to match any session when using {As,Is}TPMSessionError.
	AnySessionIndex int = -1

	// AnyWarningCode is used to match any warning code when using {As,Is}TPMWarning.
	AnyWarningCode WarningCode = 0xff
)

// InvalidResponseError is returned from any TPMContext method that executes a
// TPM command if the TPM's response is invalid. An invalid response could be
// one that is shorter than the response header, one with an invalid
// responseSize field, a payload that is shorter than the responseSize field
// indicates, a payload that unmarshals incorrectly because of an invalid
// union selector value, or an invalid response authorization.
//
// Any sessions used in the command that caused this error should be
// considered invalid.
type InvalidResponseError struct {
	Command CommandCode
	msg     string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("TPM returned an invalid response for command %s: %v", e.Command, e.msg)
}

// SessionExpiredError is returned from any TPMContext method that attempts to
// use a session that is no longer usable, either because it was flushed from
// the TPM, closed locally, or because the TPM rejected its nonce. The session
// must be replaced by the caller - it is never restarted automatically.
type SessionExpiredError struct {
	Handle Handle // Handle the session had when it was last usable
	msg    string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session 0x%08x has expired: %s", e.Handle, e.msg)
}

// TPM1Error is returned from DecodeResponseCode and any TPMContext method
// that executes a command on the TPM if the TPM response code indicates an
// error from a TPM 1.2 device.
type TPM1Error struct {
	Command CommandCode  // Command code associated with this error
	Code    ResponseCode // Response code
}

func (e *TPM1Error) Error() string {
	return fmt.Sprintf("TPM returned a 1.2 error whilst executing command %s: 0x%08x", e.Command, e.Code)
}

// TPMVendorError is returned from DecodeResponseCode and any TPMContext
// method that executes a command on the TPM if the TPM response code
// indicates a vendor-specific error.
type TPMVendorError struct {
	Command CommandCode  // Command code associated with this error
	Code    ResponseCode // Response code
}

func (e *TPMVendorError) Error() string {
	return fmt.Sprintf("TPM returned a vendor defined error whilst executing command %s: 0x%08x", e.Command, e.Code)
}

// WarningCode represents a TPM warning. These are TCG defined format 0
// response codes with the severity bit set (response codes 0x900 to 0x97f).
type WarningCode uint8

const (
	WarningContextGap     WarningCode = 0x01 // TPM_RC_CONTEXT_GAP
	WarningObjectMemory   WarningCode = 0x02 // TPM_RC_OBJECT_MEMORY
	WarningSessionMemory  WarningCode = 0x03 // TPM_RC_SESSION_MEMORY
	WarningMemory         WarningCode = 0x04 // TPM_RC_MEMORY
	WarningSessionHandles WarningCode = 0x05 // TPM_RC_SESSION_HANDLES
	WarningObjectHandles  WarningCode = 0x06 // TPM_RC_OBJECT_HANDLES
	WarningLocality       WarningCode = 0x07 // TPM_RC_LOCALITY

	// WarningYielded corresponds to TPM_RC_YIELDED and is returned for any
	// command that is suspended as a hint that the command can be retried.
	WarningYielded WarningCode = 0x08

	// WarningCanceled corresponds to TPM_RC_CANCELED and is returned for any
	// command that is canceled before being able to complete.
	WarningCanceled WarningCode = 0x09

	WarningTesting WarningCode = 0x0a // TPM_RC_TESTING

	// WarningNVRate corresponds to TPM_RC_NV_RATE and is returned for any
	// command that requires NV access if NV access is currently rate limited
	// to prevent the NV memory from wearing out.
	WarningNVRate WarningCode = 0x20

	// WarningLockout corresponds to TPM_RC_LOCKOUT and is returned for any
	// command that requires authorization for an entity that is subject to
	// dictionary attack protection, and the TPM is in dictionary attack
	// lockout mode.
	WarningLockout WarningCode = 0x21

	// WarningRetry corresponds to TPM_RC_RETRY and is returned for any
	// command if the TPM was not able to start the command.
	WarningRetry WarningCode = 0x22

	// WarningNVUnavailable corresponds to TPM_RC_NV_UNAVAILABLE and is
	// returned for any command that requires NV access but NV memory is
	// currently not available.
	WarningNVUnavailable WarningCode = 0x23
)

// TPMWarning is returned from DecodeResponseCode and any TPMContext method
// that executes a command on the TPM if the TPM response code indicates a
// condition that is not necessarily an error.
type TPMWarning struct {
	Command CommandCode // Command code associated with this error
	Code    WarningCode // Warning code
}

func (e *TPMWarning) Error() string {
	var builder bytes.Buffer
	fmt.Fprintf(&builder, "TPM returned a warning whilst executing command %s: %s", e.Command, e.Code)
	if desc, hasDesc := warningCodeDescriptions[e.Code]; hasDesc {
		fmt.Fprintf(&builder, " (%s)", desc)
	}
	return builder.String()
}

// ErrorCode represents a TPM error. This type represents TCG defined format 0
// response codes without the severity bit set (response codes 0x100 to
// 0x17f), and format 1 response codes (where rc & 0x80 != 0).
//
// Format 0 error numbers are 7 bits wide and are represented by codes 0x00 to
// 0x7f. Format 1 error numbers are 6 bits wide and are represented by codes
// 0x80 to 0xbf.
type ErrorCode uint8

const (
	// ErrorInitialize corresponds to TPM_RC_INITIALIZE and is returned for
	// any command executed between a _TPM_Init event and a TPM2_Startup
	// command.
	ErrorInitialize ErrorCode = 0x00

	// ErrorFailure corresponds to TPM_RC_FAILURE and is returned for any
	// command if the TPM is in failure mode.
	ErrorFailure ErrorCode = 0x01

	ErrorSequence ErrorCode = 0x03 // TPM_RC_SEQUENCE
	ErrorDisabled ErrorCode = 0x20 // TPM_RC_DISABLED

	// ErrorAuthMissing corresponds to TPM_RC_AUTH_MISSING and is returned for
	// a command that requires authorization of a resource, but no
	// authorization has been provided in the command payload.
	ErrorAuthMissing ErrorCode = 0x25

	ErrorPCR ErrorCode = 0x27 // TPM_RC_PCR

	// ErrorCommandSize corresponds to TPM_RC_COMMAND_SIZE and indicates that
	// the value of the commandSize field in the command header does not match
	// the size of the command packet transmitted to the TPM.
	ErrorCommandSize ErrorCode = 0x42

	// ErrorCommandCode corresponds to TPM_RC_COMMAND_CODE and is returned for
	// any command that is not implemented by the TPM.
	ErrorCommandCode ErrorCode = 0x43

	ErrorAuthsize    ErrorCode = 0x44 // TPM_RC_AUTHSIZE
	ErrorAuthContext ErrorCode = 0x45 // TPM_RC_AUTH_CONTEXT
	ErrorNeedsTest   ErrorCode = 0x53 // TPM_RC_NEEDS_TEST

	// ErrorNoResult corresponds to TPM_RC_NO_RESULT and is returned for any
	// command if the TPM cannot process a request due to an unspecified
	// problem.
	ErrorNoResult ErrorCode = 0x54

	errorCode1Start ErrorCode = 0x80

	ErrorAsymmetric ErrorCode = errorCode1Start + 0x01 // TPM_RC_ASYMMETRIC
	ErrorAttributes ErrorCode = errorCode1Start + 0x02 // TPM_RC_ATTRIBUTES

	// ErrorHash corresponds to TPM_RC_HASH and is returned as a
	// *TPMParameterError error for any command that accepts a HashAlgorithmId
	// parameter if the parameter value is not a valid digest algorithm.
	ErrorHash ErrorCode = errorCode1Start + 0x03

	// ErrorValue corresponds to TPM_RC_VALUE and is returned as a
	// *TPMParameterError or *TPMHandleError for any command where an argument
	// value is incorrect or out of range for the command.
	ErrorValue ErrorCode = errorCode1Start + 0x04

	ErrorHierarchy ErrorCode = errorCode1Start + 0x05 // TPM_RC_HIERARCHY
	ErrorKeySize   ErrorCode = errorCode1Start + 0x07 // TPM_RC_KEY_SIZE
	ErrorMGF       ErrorCode = errorCode1Start + 0x08 // TPM_RC_MGF

	// ErrorMode corresponds to TPM_RC_MODE and is returned as a
	// *TPMParameterError error for any command that accepts a SymModeId
	// parameter if the parameter value is not a valid symmetric mode.
	ErrorMode ErrorCode = errorCode1Start + 0x09

	ErrorType   ErrorCode = errorCode1Start + 0x0a // TPM_RC_TYPE
	ErrorHandle ErrorCode = errorCode1Start + 0x0b // TPM_RC_HANDLE
	ErrorKDF    ErrorCode = errorCode1Start + 0x0c // TPM_RC_KDF
	ErrorRange  ErrorCode = errorCode1Start + 0x0d // TPM_RC_RANGE

	// ErrorAuthFail corresponds to TPM_RC_AUTH_FAIL and is returned as a
	// *TPMSessionError error for a command if an authorization check fails.
	// The dictionary attack counter is incremented when this error is
	// returned.
	ErrorAuthFail ErrorCode = errorCode1Start + 0x0e

	// ErrorNonce corresponds to TPM_RC_NONCE and is returned as a
	// *TPMSessionError error for any command where the nonce in a session
	// authorization is not the one the TPM expects, which means the local
	// session state no longer matches the TPM's.
	ErrorNonce ErrorCode = errorCode1Start + 0x0f

	ErrorPP ErrorCode = errorCode1Start + 0x10 // TPM_RC_PP

	// ErrorScheme corresponds to TPM_RC_SCHEME and is returned as a
	// *TPMParameterError error for any command that accepts a SigSchemeId
	// parameter if the parameter value is not valid.
	ErrorScheme ErrorCode = errorCode1Start + 0x12

	// ErrorSize corresponds to TPM_RC_SIZE and is returned for a command if
	// a size or length field in a parameter, or the size field of the
	// command's authorization area, has an invalid value.
	ErrorSize ErrorCode = errorCode1Start + 0x15

	ErrorSymmetric ErrorCode = errorCode1Start + 0x16 // TPM_RC_SYMMETRIC
	ErrorTag       ErrorCode = errorCode1Start + 0x17 // TPM_RC_TAG

	// ErrorSelector corresponds to TPM_RC_SELECTOR and is returned as a
	// *TPMParameterError error for a command that accepts a parameter type
	// corresponding to a TPMU prefixed type if the value of the selector
	// field in the surrounding TPMT prefixed type is incorrect.
	ErrorSelector ErrorCode = errorCode1Start + 0x18

	// ErrorInsufficient corresponds to TPM_RC_INSUFFICIENT and is returned as
	// a *TPMParameterError for a command if there is insufficient data in the
	// TPM's input buffer to complete unmarshalling of the command parameters.
	ErrorInsufficient ErrorCode = errorCode1Start + 0x1a

	ErrorSignature ErrorCode = errorCode1Start + 0x1b // TPM_RC_SIGNATURE
	ErrorKey       ErrorCode = errorCode1Start + 0x1c // TPM_RC_KEY
	ErrorIntegrity ErrorCode = errorCode1Start + 0x1f // TPM_RC_INTEGRITY

	// ErrorBadAuth corresponds to TPM_RC_BAD_AUTH and is returned as a
	// *TPMSessionError error for a command if an authorization check fails
	// and the authorized entity is exempt from dictionary attack protections.
	ErrorBadAuth ErrorCode = errorCode1Start + 0x22

	ErrorCurve ErrorCode = errorCode1Start + 0x26 // TPM_RC_CURVE
	ErrorECC   ErrorCode = errorCode1Start + 0x27 // TPM_RC_ECC_POINT
)

// TPMError is returned from DecodeResponseCode and any TPMContext method that
// executes a command on the TPM if the TPM response code indicates an error
// that is not associated with a handle, parameter or session.
type TPMError struct {
	Command CommandCode // Command code associated with this error
	Code    ErrorCode   // Error code
}

func (e *TPMError) Error() string {
	var builder bytes.Buffer
	fmt.Fprintf(&builder, "TPM returned an error whilst executing command %s: %s", e.Command, e.Code)
	if desc, hasDesc := errorCodeDescriptions[e.Code]; hasDesc {
		fmt.Fprintf(&builder, " (%s)", desc)
	}
	return builder.String()
}

// TPMParameterError is returned from DecodeResponseCode and any TPMContext
// method that executes a command on the TPM if the TPM response code
// indicates an error that is associated with a command parameter. It wraps a
// *TPMError.
type TPMParameterError struct {
	*TPMError
	Index int // Index of the parameter associated with this error in the command parameter area, starting from 1
}

func (e *TPMParameterError) Error() string {
	var builder bytes.Buffer
	fmt.Fprintf(&builder, "TPM returned an error for parameter %d whilst executing command %s: %s", e.Index, e.Command, e.Code)
	if desc, hasDesc := errorCodeDescriptions[e.Code]; hasDesc {
		fmt.Fprintf(&builder, " (%s)", desc)
	}
	return builder.String()
}

func (e *TPMParameterError) Unwrap() error {
	return e.TPMError
}

// TPMSessionError is returned from DecodeResponseCode and any TPMContext
// method that executes a command on the TPM if the TPM response code
// indicates an error that is associated with a session. It wraps a *TPMError.
type TPMSessionError struct {
	*TPMError
	Index int // Index of the session associated with this error in the authorization area, starting from 1
}

func (e *TPMSessionError) Error() string {
	var builder bytes.Buffer
	fmt.Fprintf(&builder, "TPM returned an error for session %d whilst executing command %s: %s", e.Index, e.Command, e.Code)
	if desc, hasDesc := errorCodeDescriptions[e.Code]; hasDesc {
		fmt.Fprintf(&builder, " (%s)", desc)
	}
	return builder.String()
}

func (e *TPMSessionError) Unwrap() error {
	return e.TPMError
}

// TPMHandleError is returned from DecodeResponseCode and any TPMContext
// method that executes a command on the TPM if the TPM response code
// indicates an error that is associated with a command handle. It wraps a
// *TPMError.
type TPMHandleError struct {
	*TPMError

	// Index is the index of the handle associated with this error in the
	// command handle area, starting from 1. An index of 0 corresponds to an
	// unspecified handle.
	Index int
}

func (e *TPMHandleError) Error() string {
	var builder bytes.Buffer
	fmt.Fprintf(&builder, "TPM returned an error for handle %d whilst executing command %s: %s", e.Index, e.Command, e.Code)
	if desc, hasDesc := errorCodeDescriptions[e.Code]; hasDesc {
		fmt.Fprintf(&builder, " (%s)", desc)
	}
	return builder.String()
}

func (e *TPMHandleError) Unwrap() error {
	return e.TPMError
}

// AsTPMError indicates whether the error or any error within its chain is a
// *TPMError with the specified ErrorCode and CommandCode, and sets out to the
// value of error if it is. To test for any error code, use AnyErrorCode. To
// test for any command code, use AnyCommandCode. This will panic if out is
// nil.
func AsTPMError(err error, code ErrorCode, command CommandCode, out **TPMError) bool {
	return xerrors.As(err, out) && (code == AnyErrorCode || (*out).Code == code) && (command == AnyCommandCode || (*out).Command == command)
}

// IsTPMError indicates whether the error or any error within its chain is a
// *TPMError with the specified ErrorCode and CommandCode. To test for any
// error code, use AnyErrorCode. To test for any command code, use
// AnyCommandCode.
func IsTPMError(err error, code ErrorCode, command CommandCode) bool {
	var e *TPMError
	return AsTPMError(err, code, command, &e)
}

// AsTPMHandleError indicates whether the error or any error within its chain
// is a *TPMHandleError with the specified ErrorCode, CommandCode and handle
// index, and sets out to the value of error if it is. To test for any error
// code, use AnyErrorCode. To test for any command code, use AnyCommandCode.
// To test for any handle index, use AnyHandleIndex. This will panic if out is
// nil.
func AsTPMHandleError(err error, code ErrorCode, command CommandCode, handle int, out **TPMHandleError) bool {
	return xerrors.As(err, out) && (code == AnyErrorCode || (*out).Code == code) && (command == AnyCommandCode || (*out).Command == command) && (handle == AnyHandleIndex || (*out).Index == handle)
}

// IsTPMHandleError indicates whether the error or any error within its chain
// is a *TPMHandleError with the specified ErrorCode, CommandCode and handle
// index. To test for any error code, use AnyErrorCode. To test for any
// command code, use AnyCommandCode. To test for any handle index, use
// AnyHandleIndex.
func IsTPMHandleError(err error, code ErrorCode, command CommandCode, handle int) bool {
	var e *TPMHandleError
	return AsTPMHandleError(err, code, command, handle, &e)
}

// AsTPMParameterError indicates whether the error or any error within its
// chain is a *TPMParameterError with the specified ErrorCode, CommandCode and
// parameter index, and sets out to the value of error if it is. To test for
// any error code, use AnyErrorCode. To test for any command code, use
// AnyCommandCode. To test for any parameter index, use AnyParameterIndex.
// This will panic if out is nil.
func AsTPMParameterError(err error, code ErrorCode, command CommandCode, param int, out **TPMParameterError) bool {
	return xerrors.As(err, out) && (code == AnyErrorCode || (*out).Code == code) && (command == AnyCommandCode || (*out).Command == command) && (param == AnyParameterIndex || (*out).Index == param)
}

// IsTPMParameterError indicates whether the error or any error within its
// chain is a *TPMParameterError with the specified ErrorCode, CommandCode and
// parameter index. To test for any error code, use AnyErrorCode. To test for
// any command code, use AnyCommandCode. To test for any parameter index, use
// AnyParameterIndex.
func IsTPMParameterError(err error, code ErrorCode, command CommandCode, param int) bool {
	var e *TPMParameterError
	return AsTPMParameterError(err, code, command, param, &e)
}

// AsTPMSessionError indicates whether the error or any error within its chain
// is a *TPMSessionError with the specified ErrorCode, CommandCode and session
// index, and sets out to the value of error if it is. To test for any error
// code, use AnyErrorCode. To test for any command code, use AnyCommandCode.
// To test for any session index, use AnySessionIndex. This will panic if out
// is nil.
func AsTPMSessionError(err error, code ErrorCode, command CommandCode, session int, out **TPMSessionError) bool {
	return xerrors.As(err, out) && (code == AnyErrorCode || (*out).Code == code) && (command == AnyCommandCode || (*out).Command == command) && (session == AnySessionIndex || (*out).Index == session)
}

// IsTPMSessionError indicates whether the error or any error within its chain
// is a *TPMSessionError with the specified ErrorCode, CommandCode and session
// index. To test for any error code, use AnyErrorCode. To test for any
// command code, use AnyCommandCode. To test for any session index, use
// AnySessionIndex.
func IsTPMSessionError(err error, code ErrorCode, command CommandCode, session int) bool {
	var e *TPMSessionError
	return AsTPMSessionError(err, code, command, session, &e)
}

// AsTPMWarning indicates whether the error or any error within its chain is a
// *TPMWarning with the specified WarningCode and CommandCode, and sets out to
// the value of error if it is. To test for any warning code, use
// AnyWarningCode. To test for any command code, use AnyCommandCode. This will
// panic if out is nil.
func AsTPMWarning(err error, code WarningCode, command CommandCode, out **TPMWarning) bool {
	return xerrors.As(err, out) && (code == AnyWarningCode || (*out).Code == code) && (command == AnyCommandCode || (*out).Command == command)
}

// IsTPMWarning indicates whether the error or any error within its chain is a
// *TPMWarning with the specified WarningCode and CommandCode. To test for any
// warning code, use AnyWarningCode. To test for any command code, use
// AnyCommandCode.
func IsTPMWarning(err error, code WarningCode, command CommandCode) bool {
	var e *TPMWarning
	return AsTPMWarning(err, code, command, &e)
}

// DecodeResponseCode decodes the ResponseCode provided via resp. If the
// specified response code is ResponseSuccess, it returns no error, else it
// returns an error that is appropriate for the response code. The command
// code is used for adding context to the returned error.
func DecodeResponseCode(command CommandCode, resp ResponseCode) error {
	switch {
	case resp == ResponseSuccess:
		return nil
	case resp.F():
		// Format 1 error codes
		err := &TPMError{command, errorCode1Start + ErrorCode(resp.E())}
		switch {
		case resp.P():
			return &TPMParameterError{err, int(resp.N())}
		case resp.N()&0x8 != 0:
			return &TPMSessionError{err, int(resp.N() & 0x7)}
		case resp.N() != 0:
			return &TPMHandleError{err, int(resp.N())}
		default:
			return err
		}
	default:
		// Format 0 error codes
		switch {
		case !resp.V():
			return &TPM1Error{command, resp}
		case resp.T():
			return &TPMVendorError{command, resp}
		case resp.S():
			return &TPMWarning{command, WarningCode(resp.E())}
		default:
			return &TPMError{command, ErrorCode(resp.E())}
		}
	}
}

// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

// This file contains types defined in section 8 (Attributes) in
// part 2 of the library spec.

// SessionAttributes corresponds to the TPMA_SESSION type, and represents
// the attributes of a session authorization.
type SessionAttributes uint8

const (
	// AttrContinueSession indicates that the session should remain loaded on
	// the TPM after the command completes. A response without this attribute
	// set means that the TPM has flushed the session.
	AttrContinueSession SessionAttributes = 1 << iota

	// AttrAuditExclusive indicates that a command should only be executed if
	// the audit session is exclusive.
	AttrAuditExclusive

	// AttrAuditReset indicates that the audit digest of the session should
	// be reset.
	AttrAuditReset

	_
	_

	// AttrCommandEncrypt indicates that the first command parameter should
	// be encrypted by the caller.
	AttrCommandEncrypt

	// AttrResponseEncrypt indicates that the TPM should encrypt the first
	// response parameter.
	AttrResponseEncrypt

	// AttrAudit indicates that the session should be used for auditing.
	AttrAudit
)

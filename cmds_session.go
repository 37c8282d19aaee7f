// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

// Section 11 - Session Commands

import (
	"errors"
	"fmt"
)

// StartAuthSession executes the TPM2_StartAuthSession command to start an
// authorization session. On successful completion, it will return a
// SessionContext that corresponds to the new session.
//
// The type of session is defined by the sessionType parameter. If sessionType
// is SessionTypeHMAC, then the created session may be used for authorization.
//
// The authHash parameter defines the algorithm used for computing command and
// response parameter digests and command and response HMACs, and its digest
// size determines the nonce size used for the session.
//
// Salted sessions are not supported - tpmKey must be nil. This limits the
// session key derivation to the authorization value of the bind entity, which
// is sufficient for the boot-time measurement flows this package targets,
// where the secrets involved are already present on the host side.
//
// If bind is specified, then the authorization value for the corresponding
// resource must be known, by calling ResourceContext.SetAuthValue on bind
// before calling this function - the authorization value contributes to the
// session key derivation. The created session will be bound to the resource
// associated with bind, unless the authorization value of that resource is
// subsequently changed.
//
// If bind is nil, no session key is created and the HMAC key for commands
// authorized with the session is derived entirely from the authorization
// value of the resource being authorized.
//
// If no more session slots are available on the TPM, a *TPMWarning error with
// a warning code of WarningSessionMemory or WarningSessionHandles will be
// returned, and an existing session must be flushed with
// TPMContext.FlushContext before a new one can be started.
func (t *TPMContext) StartAuthSession(tpmKey, bind ResourceContext, sessionType SessionType, symmetric *SymDef, authHash HashAlgorithmId, sessions ...SessionContext) (SessionContext, error) {
	if tpmKey != nil {
		return nil, errors.New("salted sessions are not supported")
	}
	if symmetric == nil {
		symmetric = SymDefNull()
	}
	if !authHash.Available() {
		return nil, fmt.Errorf("unsupported digest algorithm or algorithm not linked in to binary (%v)", authHash)
	}
	digestSize := authHash.Size()

	var authValue []byte
	bindHandle := HandleNull
	bindContext := t.NullHandleContext()
	if bind != nil {
		bindHandle = bind.Handle()
		bindContext = bind
		authValue = bind.(resourceContextPrivate).GetAuthValue()
	}

	isBound := false
	var boundEntity Name
	if bindHandle != HandleNull && sessionType == SessionTypeHMAC {
		boundEntity = computeBindName(bind.Name(), authValue)
		isBound = true
	}

	nonceCaller := make(Nonce, digestSize)
	if err := cryptComputeNonce(t.nonceSource, nonceCaller); err != nil {
		return nil, fmt.Errorf("cannot compute initial nonceCaller: %v", err)
	}

	var sessionHandle Handle
	var nonceTPM Nonce

	if err := t.RunCommand(CommandStartAuthSession,
		[]*CommandHandleContext{
			UseHandleContext(t.NullHandleContext()),
			UseHandleContext(bindContext)},
		[]interface{}{nonceCaller, EncryptedSecret(nil), sessionType, symmetric, authHash},
		&sessionHandle,
		[]interface{}{&nonceTPM}, sessions...); err != nil {
		return nil, err
	}

	switch sessionHandle.Type() {
	case HandleTypeHMACSession, HandleTypePolicySession:
	default:
		return nil, &InvalidResponseError{CommandStartAuthSession,
			fmt.Sprintf("handle 0x%08x returned from TPM is the wrong type", sessionHandle)}
	}
	if len(nonceTPM) != digestSize {
		return nil, &InvalidResponseError{CommandStartAuthSession,
			fmt.Sprintf("nonce returned from TPM has the wrong size (got %d, expected %d)", len(nonceTPM), digestSize)}
	}

	data := &sessionContextData{
		HashAlg:     authHash,
		SessionType: sessionType,
		IsBound:     isBound,
		BoundEntity: boundEntity,
		NonceCaller: nonceCaller,
		NonceTPM:    nonceTPM,
		Symmetric:   symmetric}

	if bindHandle != HandleNull {
		data.SessionKey = cryptKDFa(authHash, authValue, []byte(sessionKeyLabel), nonceTPM, nonceCaller, digestSize*8)
	}

	return makeSessionContext(sessionHandle, data), nil
}

// sessionKeyLabel is the label used in the KDF when deriving a session key.
const sessionKeyLabel = "ATH"

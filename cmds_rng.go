// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

// Section 16 - Random Number Generator

// GetRandom executes the TPM2_GetRandom command to return the requested
// number of bytes from the TPM's random number generator. The TPM may return
// fewer bytes than requested - bytesRequested is truncated by the TPM to the
// size of the digest produced by its internal state.
//
// Reading random bytes has no side effects on the TPM, so if the transport
// times out whilst waiting for a response the command is resubmitted once
// before the error is returned to the caller.
func (t *TPMContext) GetRandom(bytesRequested uint16, sessions ...SessionContext) (randomBytes Digest, err error) {
	run := func() error {
		return t.RunCommand(CommandGetRandom, nil,
			[]interface{}{bytesRequested}, nil,
			[]interface{}{&randomBytes}, sessions...)
	}

	if err := run(); err != nil {
		if !isReadOnlyTimeout(err) {
			return nil, err
		}
		if err := run(); err != nil {
			return nil, err
		}
	}

	return randomBytes, nil
}

// StirRandom executes the TPM2_StirRandom command to add the supplied data to
// the TPM's random number generator as additional entropy. This mutates the
// generator state and is never resubmitted on a transport timeout.
func (t *TPMContext) StirRandom(inData SensitiveData, sessions ...SessionContext) error {
	return t.RunCommand(CommandStirRandom, nil, []interface{}{inData}, nil, nil, sessions...)
}

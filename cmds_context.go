// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

// Section 28 - Context Management

// FlushContext executes the TPM2_FlushContext command on the handle
// referenced by flushContext, in order to flush resources associated with it
// from the TPM. On successful completion, flushContext is invalidated - its
// Handle method will return HandleUnassigned and any SessionContext
// duplicates that share its state become unusable.
//
// Note that the flushed handle is a command parameter rather than a command
// handle - it doesn't contribute a name to any session HMACs.
func (t *TPMContext) FlushContext(flushContext HandleContext) error {
	if flushContext == nil {
		return nil
	}

	if err := t.RunCommand(CommandFlushContext, nil,
		[]interface{}{flushContext.Handle()}, nil, nil); err != nil {
		return err
	}

	flushContext.(handleContextPrivate).invalidate()
	return nil
}

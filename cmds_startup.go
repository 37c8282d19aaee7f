// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

// Section 9 - Start-up

// Startup executes the TPM2_Startup command with the specified StartupType.
// A bootloader will normally only need StartupClear, and only on platforms
// where the firmware has not already started the TPM.
//
// If called when the TPM has already received a TPM2_Startup command, a
// *TPMError error with an error code of ErrorInitialize will be returned.
func (t *TPMContext) Startup(startupType StartupType) error {
	return t.RunCommand(CommandStartup, nil, []interface{}{startupType}, nil, nil)
}

// Shutdown executes the TPM2_Shutdown command with the specified StartupType,
// which orderly prepares the TPM for a loss of power.
func (t *TPMContext) Shutdown(shutdownType StartupType) error {
	return t.RunCommand(CommandShutdown, nil, []interface{}{shutdownType}, nil, nil)
}

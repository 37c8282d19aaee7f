// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

// Section 18 - Attestation Commands

// Quote executes the TPM2_Quote command in order to quote the set of PCRs
// selected via the pcrs parameter, using the key associated with signContext
// to sign the attestation. The qualifyingData parameter is the caller-chosen
// challenge that ends up in the extraData field of the attestation, which
// allows a verifier to establish freshness.
//
// The command requires authorization with the user auth role for signContext,
// with session based authorization provided via signContextAuthSession.
//
// If the scheme of the key associated with signContext is AlgorithmNull, then
// inScheme must be provided to specify a valid signing scheme for the key. If
// it isn't, a *TPMParameterError error with an error code of ErrorScheme will
// be returned for parameter index 2.
//
// On success, it returns the attestation structure in the TPM wire format,
// which can be converted to the corresponding *Attest with AttestRaw.Decode,
// along with the signature over it. The attestation is returned unparsed so
// that a verifier can check the signature against the exact bytes the TPM
// produced.
func (t *TPMContext) Quote(signContext ResourceContext, qualifyingData Data, inScheme *SigScheme, pcrs PCRSelectionList, signContextAuthSession SessionContext, sessions ...SessionContext) (quoted AttestRaw, signature *Signature, err error) {
	if inScheme == nil {
		inScheme = &SigScheme{Scheme: SigSchemeAlgNull}
	}

	var sig Signature

	if err := t.RunCommand(CommandQuote,
		[]*CommandHandleContext{UseResourceContextWithAuth(signContext, signContextAuthSession)},
		[]interface{}{qualifyingData, inScheme, pcrs}, nil,
		[]interface{}{&quoted, &sig}, sessions...); err != nil {
		return nil, nil, err
	}

	return quoted, &sig, nil
}

// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

import (
	"errors"
)

// Section 22 - Integrity Collection (PCR)

// PCRExtend executes the TPM2_PCR_Extend command to extend the PCR associated
// with pcrContext with the tagged digests provided via the digests argument.
// The PCR is extended with each digest in the bank associated with that
// digest's algorithm.
//
// The command requires authorization with the user auth role for pcrContext,
// with session based authorization provided via pcrContextAuthSession.
//
// Extending a PCR is not idempotent. This function never resubmits the
// command, even if the transport times out whilst waiting for a response - in
// that case the caller cannot know whether the extend took effect without
// reading the PCR back.
//
// If the PCR associated with pcrContext can not be extended from the current
// locality, a *TPMError error with an error code of ErrorLocality will be
// returned.
func (t *TPMContext) PCRExtend(pcrContext ResourceContext, digests TaggedHashList, pcrContextAuthSession SessionContext, sessions ...SessionContext) error {
	return t.RunCommand(CommandPCRExtend,
		[]*CommandHandleContext{UseResourceContextWithAuth(pcrContext, pcrContextAuthSession)},
		[]interface{}{digests}, nil, nil, sessions...)
}

// PCREvent executes the TPM2_PCR_Event command to extend the PCR associated
// with pcrContext with a digest of the provided eventData, hashed with the
// algorithm for each supported PCR bank.
//
// The command requires authorization with the user auth role for pcrContext,
// with session based authorization provided via pcrContextAuthSession.
//
// On success, this function returns the list of tagged digests that the PCR
// was extended with. Like PCRExtend, the command is never resubmitted.
func (t *TPMContext) PCREvent(pcrContext ResourceContext, eventData Event, pcrContextAuthSession SessionContext, sessions ...SessionContext) (digests TaggedHashList, err error) {
	if err := t.RunCommand(CommandPCREvent,
		[]*CommandHandleContext{UseResourceContextWithAuth(pcrContext, pcrContextAuthSession)},
		[]interface{}{eventData}, nil,
		[]interface{}{&digests}, sessions...); err != nil {
		return nil, err
	}
	return digests, nil
}

// PCRRead executes the TPM2_PCR_Read command to return the values of the PCRs
// defined in the pcrSelectionIn parameter. The underlying command may not be
// able to read all of the specified PCRs in a single transaction, so this
// function will re-execute the TPM2_PCR_Read command until all requested
// values have been read or until the PCR update counter changes, which
// indicates that one of the PCRs was extended between reads and the values
// would not form a consistent snapshot. As a consequence of the possible
// re-execution, any SessionContext instances provided should have the
// AttrContinueSession attribute defined.
//
// Reading PCRs has no side effects on the TPM, so if the transport times out
// whilst waiting for a response the command is resubmitted once before the
// error is returned to the caller.
//
// On success, the current value of the PCR update counter is returned along
// with the requested PCR values.
func (t *TPMContext) PCRRead(pcrSelectionIn PCRSelectionList, sessions ...SessionContext) (pcrUpdateCounter uint32, pcrValues PCRValues, err error) {
	var remaining PCRSelectionList
	for _, s := range pcrSelectionIn {
		c := PCRSelection{Hash: s.Hash, Select: make([]int, len(s.Select))}
		copy(c.Select, s.Select)
		remaining = append(remaining, c)
	}

	pcrValues = make(PCRValues)

	for i := 0; ; i++ {
		var updateCounter uint32
		var pcrSelectionOut PCRSelectionList
		var values DigestList

		run := func() error {
			return t.RunCommand(CommandPCRRead, nil,
				[]interface{}{remaining}, nil,
				[]interface{}{&updateCounter, &pcrSelectionOut, &values}, sessions...)
		}

		if err := run(); err != nil {
			if !isReadOnlyTimeout(err) {
				return 0, nil, err
			}
			if err := run(); err != nil {
				return 0, nil, err
			}
		}

		if i == 0 {
			pcrUpdateCounter = updateCounter
		} else if updateCounter != pcrUpdateCounter {
			return 0, nil, &InvalidResponseError{CommandPCRRead, "PCR update counter changed between commands"}
		} else if len(values) == 0 && pcrSelectionOut.IsEmpty() {
			return 0, nil, errors.New("cannot read values for PCRs that are not implemented")
		}

		if n, err := pcrValues.SetValuesFromListAndSelection(pcrSelectionOut, values); err != nil {
			return 0, nil, &InvalidResponseError{CommandPCRRead, err.Error()}
		} else if n != len(values) {
			return 0, nil, &InvalidResponseError{CommandPCRRead, "too many digests"}
		}

		remaining = remaining.Remove(pcrSelectionOut)
		if remaining.IsEmpty() {
			break
		}
	}

	return pcrUpdateCounter, pcrValues, nil
}

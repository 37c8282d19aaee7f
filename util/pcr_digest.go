// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

/*
Package util contains helpers for working with values produced by the tpm2
package, such as validating the PCR digest contained in a quote against PCR
values read from the TPM.
*/
package util

import (
	"fmt"

	"github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
)

// ComputePCRDigest computes a digest of the supplied PCR values using the
// specified algorithm, iterating the values in the order described by the
// supplied selections. The digest is computed the same way as
// PCRComputeCurrentDigest in the TPM reference implementation, which makes it
// suitable for validating the pcrDigest field of a quote produced by
// TPMContext.Quote against values read with TPMContext.PCRRead.
//
// This will panic if the specified digest algorithm is not available.
func ComputePCRDigest(alg tpm2.HashAlgorithmId, pcrs tpm2.PCRSelectionList, values tpm2.PCRValues) (tpm2.Digest, error) {
	if !alg.Available() {
		panic(fmt.Sprintf("algorithm %v is not available", alg))
	}
	h := alg.NewHash()

	// Marshalling and unmarshalling puts the selections in to the form
	// in which the TPM iterates PCRs.
	mu.MustCopyValue(&pcrs, pcrs)

	for _, s := range pcrs {
		bank, ok := values[s.Hash]
		if !ok {
			return nil, fmt.Errorf("the provided values don't contain digests for the selected PCR bank %v", s.Hash)
		}
		for _, i := range s.Select {
			d, ok := bank[i]
			if !ok {
				return nil, fmt.Errorf("the provided values don't contain a digest for PCR%d in bank %v", i, s.Hash)
			}
			h.Write(d)
		}
	}

	return h.Sum(nil), nil
}

// ComputePCRDigestSimple computes a digest of all of the supplied PCR values
// using the specified algorithm, along with the selection list that describes
// them. See ComputePCRDigest for the iteration order.
//
// This will panic if the specified digest algorithm is not available.
func ComputePCRDigestSimple(alg tpm2.HashAlgorithmId, values tpm2.PCRValues) (tpm2.PCRSelectionList, tpm2.Digest) {
	pcrs := values.SelectionList()
	digest, err := ComputePCRDigest(alg, pcrs, values)
	if err != nil {
		panic(fmt.Sprintf("ComputePCRDigest failed: %v", err))
	}

	return pcrs, digest
}

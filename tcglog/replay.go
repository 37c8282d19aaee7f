// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tcglog

import (
	"bytes"
	"fmt"

	"github.com/ChocolateLoverRaj/uefi-tpm2"
)

// pcrResetValue returns the value that the supplied PCR holds immediately
// after a TPM reset, before firmware extends anything to it. PCR 0 starts
// with its last byte set to the locality from which TPM2_Startup was
// executed.
func (l *Log) pcrResetValue(alg tpm2.HashAlgorithmId, pcr PCRIndex) Digest {
	value := make(Digest, alg.Size())
	if pcr == 0 {
		value[len(value)-1] = l.StartupLocality
	}
	return value
}

// Replay computes the values that the PCRs measured in this log should hold
// for the supplied digest algorithm, by replaying every event's extend. The
// supplied algorithm must be one of those listed in the log's specification
// ID event.
//
// EV_NO_ACTION events are informational and are not extended to any PCR.
func (l *Log) Replay(alg tpm2.HashAlgorithmId) (map[PCRIndex]Digest, error) {
	if !l.Algorithms.Contains(alg) {
		return nil, fmt.Errorf("log does not contain digests for algorithm %v", alg)
	}

	values := make(map[PCRIndex]Digest)
	for _, event := range l.Events {
		if event.EventType == EventTypeNoAction {
			continue
		}

		digest, ok := event.Digests[alg]
		if !ok {
			return nil, fmt.Errorf("event measured to PCR %d (type %v) has no digest for algorithm %v", event.PCRIndex, event.EventType, alg)
		}

		value, ok := values[event.PCRIndex]
		if !ok {
			value = l.pcrResetValue(alg, event.PCRIndex)
		}

		h := alg.NewHash()
		h.Write(value)
		h.Write(digest)
		values[event.PCRIndex] = h.Sum(nil)
	}

	return values, nil
}

// VerifyPCRValue determines whether the supplied PCR value read from the TPM
// is consistent with the events recorded in this log.
func (l *Log) VerifyPCRValue(alg tpm2.HashAlgorithmId, pcr PCRIndex, value tpm2.Digest) (bool, error) {
	replayed, err := l.Replay(alg)
	if err != nil {
		return false, err
	}
	expected, ok := replayed[pcr]
	if !ok {
		expected = l.pcrResetValue(alg, pcr)
	}
	return bytes.Equal(expected, value), nil
}

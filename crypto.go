// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/canonical/go-sp800.108-kdf"
	"github.com/canonical/go-sp800.90a-drbg"

	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
)

func cryptComputeCpHash(hashAlg HashAlgorithmId, command CommandCode, handles []Name, parameters []byte) []byte {
	hash := hashAlg.NewHash()

	binary.Write(hash, binary.BigEndian, command)
	for _, name := range handles {
		hash.Write([]byte(name))
	}
	hash.Write(parameters)

	return hash.Sum(nil)
}

func cryptComputeRpHash(hashAlg HashAlgorithmId, responseCode ResponseCode, command CommandCode, parameters []byte) []byte {
	hash := hashAlg.NewHash()

	binary.Write(hash, binary.BigEndian, responseCode)
	binary.Write(hash, binary.BigEndian, command)
	hash.Write(parameters)

	return hash.Sum(nil)
}

// ComputeCpHash computes a command parameter digest from the specified command
// code, the supplied handle names and parameters using the specified digest
// algorithm. The parameters are serialized to the TPM wire format in the order
// they are supplied.
func ComputeCpHash(hashAlg HashAlgorithmId, command CommandCode, handles []Name, params ...interface{}) (Digest, error) {
	if !hashAlg.Available() {
		return nil, fmt.Errorf("unknown digest algorithm %v", hashAlg)
	}
	cpBytes, err := mu.MarshalToBytes(params...)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal parameters: %v", err)
	}
	return cryptComputeCpHash(hashAlg, command, handles, cpBytes), nil
}

func cryptKDFa(hashAlg HashAlgorithmId, key, label, contextU, contextV []byte, sizeInBits int) []byte {
	context := make([]byte, len(contextU)+len(contextV))
	copy(context, contextU)
	copy(context[len(contextU):], contextV)
	return kdf.CounterModeKey(kdf.NewHMACPRF(hashAlg.GetHash()), key, label, context, uint32(sizeInBits))
}

func cryptComputeNonce(nonceSource io.Reader, nonce []byte) error {
	_, err := io.ReadFull(nonceSource, nonce)
	return err
}

// NewDRBGNonceSource returns a source of caller nonces backed by a SP800-90A
// HMAC_DRBG instantiated with the supplied entropy input. Environments that
// have no ambient entropy source can seed the returned reader from whatever
// entropy the firmware collected at boot and install it on a TPMContext with
// TPMContext.SetNonceSource.
func NewDRBGNonceSource(hashAlg HashAlgorithmId, entropyInput, nonce, personalization []byte) (io.Reader, error) {
	if !hashAlg.Available() {
		return nil, fmt.Errorf("unknown digest algorithm %v", hashAlg)
	}
	return drbg.NewHMACWithExternalEntropy(hashAlg.GetHash(), entropyInput, nonce, personalization, nil)
}

var defaultNonceSource io.Reader = rand.Reader

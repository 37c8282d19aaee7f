// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2_test

import (
	"bytes"

	. "gopkg.in/check.v1"

	. "github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
)

type typesAlgsSuite struct{}

var _ = Suite(&typesAlgsSuite{})

func (s *typesAlgsSuite) testSignatureHashAlg(c *C, in Signature, expected HashAlgorithmId) {
	// Round-trip through the wire format so that the union member is the
	// one selected by the scheme, as it would be for a signature returned
	// by the TPM.
	var out Signature
	mu.MustCopyValue(&out, in)
	c.Check(out.SigAlg, Equals, in.SigAlg)
	c.Check(out.HashAlg(), Equals, expected)
}

func (s *typesAlgsSuite) TestSignatureHashAlgRSASSA(c *C) {
	s.testSignatureHashAlg(c, Signature{
		SigAlg: SigSchemeAlgRSASSA,
		Signature: &SignatureU{
			RSASSA: &SignatureRSASSA{Hash: HashAlgorithmSHA256, Sig: make(PublicKeyRSA, 256)}}},
		HashAlgorithmSHA256)
}

func (s *typesAlgsSuite) TestSignatureHashAlgRSAPSS(c *C) {
	s.testSignatureHashAlg(c, Signature{
		SigAlg: SigSchemeAlgRSAPSS,
		Signature: &SignatureU{
			RSAPSS: &SignatureRSAPSS{Hash: HashAlgorithmSHA256, Sig: make(PublicKeyRSA, 256)}}},
		HashAlgorithmSHA256)
}

func (s *typesAlgsSuite) TestSignatureHashAlgECDSA(c *C) {
	s.testSignatureHashAlg(c, Signature{
		SigAlg: SigSchemeAlgECDSA,
		Signature: &SignatureU{
			ECDSA: &SignatureECDSA{
				Hash:       HashAlgorithmSHA1,
				SignatureR: make(ECCParameter, 32),
				SignatureS: make(ECCParameter, 32)}}},
		HashAlgorithmSHA1)
}

func (s *typesAlgsSuite) TestSignatureHashAlgHMAC(c *C) {
	s.testSignatureHashAlg(c, Signature{
		SigAlg: SigSchemeAlgHMAC,
		Signature: &SignatureU{
			HMAC: &TaggedHash{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0x5a}, 32)}}},
		HashAlgorithmSHA256)
}

func (s *typesAlgsSuite) TestSignatureHashAlgNull(c *C) {
	sig := Signature{SigAlg: SigSchemeAlgNull, Signature: &SignatureU{}}
	c.Check(sig.HashAlg(), Equals, HashAlgorithmNull)
}

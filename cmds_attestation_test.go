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

type attestationSuite struct {
	scriptedSuite
}

var _ = Suite(&attestationSuite{})

func (s *attestationSuite) TestQuote(c *C) {
	sel := PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{0, 2, 4, 7}}}
	pcrDigest := Digest(bytes.Repeat([]byte{0x44}, 32))

	attest := Attest{
		Magic:           TPMGeneratedValue,
		Type:            TagAttestQuote,
		QualifiedSigner: Name{0x81, 0x00, 0x00, 0x01},
		ExtraData:       Data("challenge"),
		ClockInfo:       ClockInfo{Clock: 1000, ResetCount: 2, RestartCount: 1, Safe: true},
		FirmwareVersion: 0x20260801,
		Attested:        &AttestU{Quote: &QuoteInfo{PCRSelect: sel, PCRDigest: pcrDigest}}}
	quoted := AttestRaw(mu.MustMarshalToBytes(attest))

	signature := Signature{
		SigAlg: SigSchemeAlgHMAC,
		Signature: &SignatureU{
			HMAC: &TaggedHash{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0x77}, 32)}}}

	auths := []AuthResponse{{SessionAttributes: AttrContinueSession}}
	s.transport.QueueResponse(CommandQuote,
		makeResponsePacket(ResponseSuccess, nil, mu.MustMarshalToBytes(quoted, &signature), auths))

	key := s.tpm.OwnerHandleContext()
	outQuoted, outSignature, err := s.tpm.Quote(key, Data("challenge"), nil, sel, nil)
	c.Assert(err, IsNil)
	c.Check(outQuoted, DeepEquals, quoted)
	c.Check(outSignature.SigAlg, Equals, SigSchemeAlgHMAC)
	c.Check(outSignature.HashAlg(), Equals, HashAlgorithmSHA256)

	// A nil scheme selects TPM_ALG_NULL, deferring to the scheme of the key.
	handles, authArea, parameters := s.mustUnmarshalCommand(c)
	c.Check(handles, DeepEquals, HandleList{HandleOwner})
	c.Assert(authArea, HasLen, 1)
	c.Check(authArea[0].SessionHandle, Equals, HandlePW)
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(
		Data("challenge"), &SigScheme{Scheme: SigSchemeAlgNull}, sel))

	decoded, err := outQuoted.Decode()
	c.Assert(err, IsNil)
	c.Check(decoded.Magic, Equals, TPMGeneratedValue)
	c.Check(decoded.Type, Equals, TagAttestQuote)
	c.Check(decoded.ExtraData, DeepEquals, Data("challenge"))
	c.Check(decoded.Attested.Quote.PCRDigest, DeepEquals, pcrDigest)
	c.Check(decoded.Attested.Quote.PCRSelect.Equal(sel), Equals, true)
}

func (s *attestationSuite) TestQuoteWithScheme(c *C) {
	sel := PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{7}}}
	scheme := SigScheme{
		Scheme:  SigSchemeAlgRSASSA,
		Details: &SigSchemeU{RSASSA: &SigSchemeRSASSA{HashAlg: HashAlgorithmSHA256}}}

	attest := Attest{
		Magic:    TPMGeneratedValue,
		Type:     TagAttestQuote,
		Attested: &AttestU{Quote: &QuoteInfo{PCRSelect: sel, PCRDigest: make(Digest, 32)}}}
	quoted := AttestRaw(mu.MustMarshalToBytes(attest))

	signature := Signature{
		SigAlg: SigSchemeAlgRSASSA,
		Signature: &SignatureU{
			RSASSA: &SignatureRSASSA{Hash: HashAlgorithmSHA256, Sig: make(PublicKeyRSA, 256)}}}

	auths := []AuthResponse{{SessionAttributes: AttrContinueSession}}
	s.transport.QueueResponse(CommandQuote,
		makeResponsePacket(ResponseSuccess, nil, mu.MustMarshalToBytes(quoted, &signature), auths))

	_, outSignature, err := s.tpm.Quote(s.tpm.OwnerHandleContext(), nil, &scheme, sel, nil)
	c.Assert(err, IsNil)
	c.Check(outSignature.SigAlg, Equals, SigSchemeAlgRSASSA)

	_, _, parameters := s.mustUnmarshalCommand(c)
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(Data(nil), &scheme, sel))
}

func (s *attestationSuite) TestQuoteRSAPSSSignature(c *C) {
	sel := PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{7}}}

	attest := Attest{
		Magic:    TPMGeneratedValue,
		Type:     TagAttestQuote,
		Attested: &AttestU{Quote: &QuoteInfo{PCRSelect: sel, PCRDigest: make(Digest, 32)}}}
	quoted := AttestRaw(mu.MustMarshalToBytes(attest))

	signature := Signature{
		SigAlg: SigSchemeAlgRSAPSS,
		Signature: &SignatureU{
			RSAPSS: &SignatureRSAPSS{Hash: HashAlgorithmSHA256, Sig: make(PublicKeyRSA, 256)}}}

	auths := []AuthResponse{{SessionAttributes: AttrContinueSession}}
	s.transport.QueueResponse(CommandQuote,
		makeResponsePacket(ResponseSuccess, nil, mu.MustMarshalToBytes(quoted, &signature), auths))

	_, outSignature, err := s.tpm.Quote(s.tpm.OwnerHandleContext(), nil, nil, sel, nil)
	c.Assert(err, IsNil)
	c.Check(outSignature.SigAlg, Equals, SigSchemeAlgRSAPSS)
	c.Check(outSignature.HashAlg(), Equals, HashAlgorithmSHA256)
}

func (s *attestationSuite) TestAttestRawDecodeBadMagic(c *C) {
	attest := Attest{
		Magic:    TPMGenerated(0x12345678),
		Type:     TagAttestQuote,
		Attested: &AttestU{Quote: &QuoteInfo{PCRDigest: make(Digest, 32)}}}
	raw := AttestRaw(mu.MustMarshalToBytes(attest))

	_, err := raw.Decode()
	c.Check(err, ErrorMatches, "attestation structure has invalid magic value 0x12345678")
}

// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	. "gopkg.in/check.v1"

	. "github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
)

type cryptoSuite struct{}

var _ = Suite(&cryptoSuite{})

func (s *cryptoSuite) TestComputeCpHash(c *C) {
	name := Name{0x40, 0x00, 0x00, 0x01}

	digest, err := ComputeCpHash(HashAlgorithmSHA256, CommandPCRExtend, []Name{name},
		TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: make([]byte, 32)}})
	c.Assert(err, IsNil)

	h := sha256.New()
	binary.Write(h, binary.BigEndian, CommandPCRExtend)
	h.Write(name)
	h.Write(mu.MustMarshalToBytes(TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: make([]byte, 32)}}))
	c.Check(digest, DeepEquals, Digest(h.Sum(nil)))
}

func (s *cryptoSuite) TestComputeCpHashNoParams(c *C) {
	digest, err := ComputeCpHash(HashAlgorithmSHA256, CommandStartup, nil, StartupClear)
	c.Assert(err, IsNil)

	h := sha256.New()
	binary.Write(h, binary.BigEndian, CommandStartup)
	binary.Write(h, binary.BigEndian, StartupClear)
	c.Check(digest, DeepEquals, Digest(h.Sum(nil)))
}

func (s *cryptoSuite) TestComputeCpHashUnavailableAlg(c *C) {
	_, err := ComputeCpHash(HashAlgorithmNull, CommandStartup, nil)
	c.Check(err, ErrorMatches, "unknown digest algorithm TPM_ALG_NULL")
}

func (s *cryptoSuite) TestDRBGNonceSourceDeterministic(c *C) {
	entropy := bytes.Repeat([]byte{0x36}, 32)

	r1, err := NewDRBGNonceSource(HashAlgorithmSHA256, entropy, nil, []byte("nonce source"))
	c.Assert(err, IsNil)
	r2, err := NewDRBGNonceSource(HashAlgorithmSHA256, entropy, nil, []byte("nonce source"))
	c.Assert(err, IsNil)

	b1 := make([]byte, 32)
	b2 := make([]byte, 32)
	_, err = r1.Read(b1)
	c.Check(err, IsNil)
	_, err = r2.Read(b2)
	c.Check(err, IsNil)

	// The same entropy input yields the same nonce stream.
	c.Check(b1, DeepEquals, b2)

	// Further reads advance the stream.
	b3 := make([]byte, 32)
	_, err = r1.Read(b3)
	c.Check(err, IsNil)
	c.Check(b3, Not(DeepEquals), b1)
}

func (s *cryptoSuite) TestDRBGNonceSourceUnavailableAlg(c *C) {
	_, err := NewDRBGNonceSource(HashAlgorithmNull, make([]byte, 32), nil, nil)
	c.Check(err, ErrorMatches, "unknown digest algorithm TPM_ALG_NULL")
}

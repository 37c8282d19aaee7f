// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2_test

import (
	"errors"

	. "gopkg.in/check.v1"

	. "github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
	"github.com/ChocolateLoverRaj/uefi-tpm2/testutil"
)

type rngSuite struct {
	scriptedSuite
}

var _ = Suite(&rngSuite{})

func (s *rngSuite) TestGetRandom(c *C) {
	random := Digest{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8}
	s.transport.QueueResponse(CommandGetRandom, makeSuccessResponse(random))

	out, err := s.tpm.GetRandom(8)
	c.Check(err, IsNil)
	c.Check(out, DeepEquals, random)

	handles, _, parameters := s.mustUnmarshalCommand(c)
	c.Check(handles, HasLen, 0)
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(uint16(8)))
}

func (s *rngSuite) TestGetRandomZeroBytes(c *C) {
	// A zero-byte request is valid and yields an empty buffer.
	s.transport.QueueResponse(CommandGetRandom, makeSuccessResponse(Digest{}))

	out, err := s.tpm.GetRandom(0)
	c.Check(err, IsNil)
	c.Check(out, HasLen, 0)

	_, _, parameters := s.mustUnmarshalCommand(c)
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(uint16(0)))
}

func (s *rngSuite) TestGetRandomRetriesOnTimeout(c *C) {
	// Reading random bytes has no side effects, so a transport timeout
	// results in exactly one resubmission.
	random := Digest{0xa, 0xb}
	s.transport.QueueError(CommandGetRandom, &TransportTimeoutError{})
	s.transport.QueueResponse(CommandGetRandom, makeSuccessResponse(random))

	out, err := s.tpm.GetRandom(2)
	c.Check(err, IsNil)
	c.Check(out, DeepEquals, random)
}

func (s *rngSuite) TestGetRandomTimeoutRetriedOnce(c *C) {
	s.transport.QueueError(CommandGetRandom, &TransportTimeoutError{})
	s.transport.QueueError(CommandGetRandom, &TransportTimeoutError{})

	_, err := s.tpm.GetRandom(2)
	var te *TransportTimeoutError
	c.Check(errors.As(err, &te), testutil.IsTrue)
}

func (s *rngSuite) TestGetRandomTransportError(c *C) {
	s.transport.QueueError(CommandGetRandom, errors.New("some error"))

	_, err := s.tpm.GetRandom(2)
	var te *TransportError
	c.Assert(errors.As(err, &te), testutil.IsTrue)
	c.Check(te.Op, Equals, "submit")
}

func (s *rngSuite) TestGetRandomInvalidResponse(c *C) {
	// Trailing bytes after the response parameters.
	resp := makeSuccessResponse(Digest{0x1}, uint32(0))
	s.transport.QueueResponse(CommandGetRandom, resp)

	_, err := s.tpm.GetRandom(1)
	var re *InvalidResponseError
	c.Assert(errors.As(err, &re), testutil.IsTrue)
	c.Check(re.Command, Equals, CommandGetRandom)
}

func (s *rngSuite) TestGetRandomBadResponseSize(c *C) {
	resp := makeSuccessResponse(Digest{0x1})
	resp[5] ^= 0xff
	s.transport.QueueResponse(CommandGetRandom, resp)

	_, err := s.tpm.GetRandom(1)
	var re *InvalidResponseError
	c.Check(errors.As(err, &re), testutil.IsTrue)
}

func (s *rngSuite) TestStirRandom(c *C) {
	s.transport.QueueResponse(CommandStirRandom, makeSuccessResponse())

	c.Check(s.tpm.StirRandom(SensitiveData("gathered entropy")), IsNil)

	_, _, parameters := s.mustUnmarshalCommand(c)
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(SensitiveData("gathered entropy")))
}

func (s *rngSuite) TestStirRandomNotRetriedOnTimeout(c *C) {
	// Stirring mutates the generator state so the command is never
	// resubmitted.
	s.transport.QueueError(CommandStirRandom, &TransportTimeoutError{})

	err := s.tpm.StirRandom(SensitiveData{0x1})
	var te *TransportTimeoutError
	c.Check(errors.As(err, &te), testutil.IsTrue)
	c.Check(s.transport.RemainingResponses(), Equals, 0)
}

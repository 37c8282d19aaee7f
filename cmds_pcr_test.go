// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2_test

import (
	"bytes"
	"errors"

	. "gopkg.in/check.v1"

	. "github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
	"github.com/ChocolateLoverRaj/uefi-tpm2/testutil"
)

type pcrSuite struct {
	scriptedSuite
}

var _ = Suite(&pcrSuite{})

func (s *pcrSuite) TestPCRExtendWithPassword(c *C) {
	pcr := s.tpm.PCRHandleContext(7)
	pcr.SetAuthValue([]byte("pcr7"))

	digests := TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0xaa}, 32)}}

	auths := []AuthResponse{{SessionAttributes: AttrContinueSession}}
	s.transport.QueueResponse(CommandPCRExtend, makeResponsePacket(ResponseSuccess, nil, nil, auths))

	c.Check(s.tpm.PCRExtend(pcr, digests, nil), IsNil)

	handles, authArea, parameters := s.mustUnmarshalCommand(c)
	c.Check(handles, DeepEquals, HandleList{Handle(7)})
	c.Assert(authArea, HasLen, 1)
	c.Check(authArea[0], DeepEquals, AuthCommand{
		SessionHandle:     HandlePW,
		SessionAttributes: AttrContinueSession,
		HMAC:              Auth("pcr7")})
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(digests))
}

func (s *pcrSuite) TestPCRExtendNotRetriedOnTimeout(c *C) {
	// Extending is not idempotent so the command is never resubmitted.
	s.transport.QueueError(CommandPCRExtend, &TransportTimeoutError{})

	digests := TaggedHashList{{HashAlg: HashAlgorithmSHA256, Digest: make([]byte, 32)}}
	err := s.tpm.PCRExtend(s.tpm.PCRHandleContext(0), digests, nil)
	var te *TransportTimeoutError
	c.Check(errors.As(err, &te), testutil.IsTrue)
	c.Check(s.transport.RemainingResponses(), Equals, 0)
}

func (s *pcrSuite) TestPCREvent(c *C) {
	pcr := s.tpm.PCRHandleContext(2)

	digests := TaggedHashList{
		{HashAlg: HashAlgorithmSHA1, Digest: bytes.Repeat([]byte{0x5a}, 20)},
		{HashAlg: HashAlgorithmSHA256, Digest: bytes.Repeat([]byte{0xc3}, 32)}}
	auths := []AuthResponse{{SessionAttributes: AttrContinueSession}}
	s.transport.QueueResponse(CommandPCREvent,
		makeResponsePacket(ResponseSuccess, nil, mu.MustMarshalToBytes(digests), auths))

	out, err := s.tpm.PCREvent(pcr, Event("event data"), nil)
	c.Check(err, IsNil)
	c.Check(out, DeepEquals, digests)

	handles, _, parameters := s.mustUnmarshalCommand(c)
	c.Check(handles, DeepEquals, HandleList{Handle(2)})
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(Event("event data")))
}

func (s *pcrSuite) TestPCRRead(c *C) {
	digest := Digest(bytes.Repeat([]byte{0x11}, 32))
	sel := PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{7}}}
	s.transport.QueueResponse(CommandPCRRead,
		makeSuccessResponse(uint32(5), sel, DigestList{digest}))

	updateCounter, values, err := s.tpm.PCRRead(sel)
	c.Check(err, IsNil)
	c.Check(updateCounter, Equals, uint32(5))
	c.Check(values, DeepEquals, PCRValues{HashAlgorithmSHA256: {7: digest}})
}

func (s *pcrSuite) TestPCRReadMultipleCommands(c *C) {
	// The TPM doesn't have to return every requested PCR in one response -
	// the remaining selection is read with further commands.
	digest0 := Digest(bytes.Repeat([]byte{0x11}, 32))
	digest7 := Digest(bytes.Repeat([]byte{0x22}, 32))

	s.transport.QueueResponse(CommandPCRRead, makeSuccessResponse(
		uint32(5),
		PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{0}}},
		DigestList{digest0}))
	s.transport.QueueResponse(CommandPCRRead, makeSuccessResponse(
		uint32(5),
		PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{7}}},
		DigestList{digest7}))

	updateCounter, values, err := s.tpm.PCRRead(PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{0, 7}}})
	c.Check(err, IsNil)
	c.Check(updateCounter, Equals, uint32(5))
	c.Check(values, DeepEquals, PCRValues{HashAlgorithmSHA256: {0: digest0, 7: digest7}})
	c.Check(s.transport.CommandLog, HasLen, 2)
}

func (s *pcrSuite) TestPCRReadUpdateCounterChanged(c *C) {
	// A PCR was extended between the two reads, so the values wouldn't form
	// a consistent snapshot.
	digest := Digest(bytes.Repeat([]byte{0x11}, 32))

	s.transport.QueueResponse(CommandPCRRead, makeSuccessResponse(
		uint32(5),
		PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{0}}},
		DigestList{digest}))
	s.transport.QueueResponse(CommandPCRRead, makeSuccessResponse(
		uint32(6),
		PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{7}}},
		DigestList{digest}))

	_, _, err := s.tpm.PCRRead(PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{0, 7}}})
	var re *InvalidResponseError
	c.Assert(errors.As(err, &re), testutil.IsTrue)
	c.Check(re.Command, Equals, CommandPCRRead)
}

func (s *pcrSuite) TestPCRReadUnimplemented(c *C) {
	empty := makeSuccessResponse(uint32(5), PCRSelectionList{}, DigestList{})
	s.transport.QueueResponse(CommandPCRRead, empty)
	s.transport.QueueResponse(CommandPCRRead, empty)

	_, _, err := s.tpm.PCRRead(PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{0}}})
	c.Check(err, ErrorMatches, "cannot read values for PCRs that are not implemented")
}

func (s *pcrSuite) TestPCRReadRetriesOnTimeout(c *C) {
	digest := Digest(bytes.Repeat([]byte{0x11}, 32))
	sel := PCRSelectionList{{Hash: HashAlgorithmSHA256, Select: []int{7}}}

	s.transport.QueueError(CommandPCRRead, &TransportTimeoutError{})
	s.transport.QueueResponse(CommandPCRRead, makeSuccessResponse(uint32(5), sel, DigestList{digest}))

	_, values, err := s.tpm.PCRRead(sel)
	c.Check(err, IsNil)
	c.Check(values, DeepEquals, PCRValues{HashAlgorithmSHA256: {7: digest}})
}

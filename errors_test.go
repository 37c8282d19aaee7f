// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2_test

import (
	"errors"

	. "gopkg.in/check.v1"

	. "github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/testutil"
)

type errorsSuite struct {
	scriptedSuite
}

var _ = Suite(&errorsSuite{})

func (s *errorsSuite) TestDecodeSuccess(c *C) {
	c.Check(DecodeResponseCode(CommandGetRandom, ResponseSuccess), IsNil)
}

func (s *errorsSuite) TestDecodeFormatZeroError(c *C) {
	err := DecodeResponseCode(CommandGetRandom, ResponseCode(0x143))
	c.Assert(err, FitsTypeOf, &TPMError{})
	e := err.(*TPMError)
	c.Check(e.Command, Equals, CommandGetRandom)
	c.Check(e.Code, Equals, ErrorCommandCode)
	c.Check(IsTPMError(err, ErrorCommandCode, CommandGetRandom), testutil.IsTrue)
	c.Check(IsTPMError(err, AnyErrorCode, AnyCommandCode), testutil.IsTrue)
	c.Check(IsTPMError(err, ErrorAuthMissing, CommandGetRandom), testutil.IsFalse)
}

func (s *errorsSuite) TestDecodeWarning(c *C) {
	err := DecodeResponseCode(CommandStartAuthSession, ResponseCode(0x903))
	c.Assert(err, FitsTypeOf, &TPMWarning{})
	e := err.(*TPMWarning)
	c.Check(e.Code, Equals, WarningSessionMemory)
	c.Check(IsTPMWarning(err, WarningSessionMemory, CommandStartAuthSession), testutil.IsTrue)
}

func (s *errorsSuite) TestDecodeParameterError(c *C) {
	// Format-one code with P set, N=2, E=TPM_RC_VALUE.
	err := DecodeResponseCode(CommandQuote, ResponseCode(0x80|0x40|0x04|2<<8))
	c.Assert(err, FitsTypeOf, &TPMParameterError{})
	e := err.(*TPMParameterError)
	c.Check(e.Code, Equals, ErrorValue)
	c.Check(e.Index, Equals, 2)
	c.Check(IsTPMParameterError(err, ErrorValue, CommandQuote, 2), testutil.IsTrue)
	// A parameter error is also a *TPMError.
	c.Check(IsTPMError(err, ErrorValue, CommandQuote), testutil.IsTrue)
}

func (s *errorsSuite) TestDecodeHandleError(c *C) {
	err := DecodeResponseCode(CommandQuote, ResponseCode(0x80|0x0b|1<<8))
	c.Assert(err, FitsTypeOf, &TPMHandleError{})
	e := err.(*TPMHandleError)
	c.Check(e.Code, Equals, ErrorHandle)
	c.Check(e.Index, Equals, 1)
	c.Check(IsTPMHandleError(err, ErrorHandle, CommandQuote, 1), testutil.IsTrue)
}

func (s *errorsSuite) TestDecodeSessionError(c *C) {
	err := DecodeResponseCode(CommandPCRExtend, ResponseCode(0x80|0x0e|9<<8))
	c.Assert(err, FitsTypeOf, &TPMSessionError{})
	e := err.(*TPMSessionError)
	c.Check(e.Code, Equals, ErrorAuthFail)
	c.Check(e.Index, Equals, 1)
	c.Check(IsTPMSessionError(err, ErrorAuthFail, CommandPCRExtend, 1), testutil.IsTrue)
}

func (s *errorsSuite) TestDecodeVendorError(c *C) {
	err := DecodeResponseCode(CommandGetRandom, ResponseCode(0x100|0x400|0x01))
	c.Assert(err, FitsTypeOf, &TPMVendorError{})
	c.Check(err.(*TPMVendorError).Code, Equals, ResponseCode(0x501))
}

func (s *errorsSuite) TestDecodeTPM1Error(c *C) {
	err := DecodeResponseCode(CommandGetRandom, ResponseCode(0x1e))
	c.Assert(err, FitsTypeOf, &TPM1Error{})
	c.Check(err.(*TPM1Error).Code, Equals, ResponseBadTag)
}

func (s *errorsSuite) TestCommandReturnsTPMError(c *C) {
	// TPM_RC_INITIALIZE - a command was executed before TPM2_Startup.
	s.transport.QueueResponse(CommandGetRandom, makeErrorResponse(ResponseCode(0x100)))

	_, err := s.tpm.GetRandom(8)
	c.Check(IsTPMError(err, ErrorInitialize, CommandGetRandom), testutil.IsTrue)
}

func (s *errorsSuite) TestCommandReturnsWarning(c *C) {
	s.transport.QueueResponse(CommandStartup, makeErrorResponse(ResponseCode(0x923)))

	err := s.tpm.Startup(StartupClear)
	var w *TPMWarning
	c.Assert(errors.As(err, &w), testutil.IsTrue)
	c.Check(w.Code, Equals, WarningNVUnavailable)
}

// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2_test

import (
	. "gopkg.in/check.v1"

	. "github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
	"github.com/ChocolateLoverRaj/uefi-tpm2/testutil"
)

type startupSuite struct {
	scriptedSuite
}

var _ = Suite(&startupSuite{})

func (s *startupSuite) TestStartupClear(c *C) {
	s.transport.QueueResponse(CommandStartup, makeSuccessResponse())

	c.Check(s.tpm.Startup(StartupClear), IsNil)

	handles, authArea, parameters := s.mustUnmarshalCommand(c)
	c.Check(handles, HasLen, 0)
	c.Check(authArea, HasLen, 0)
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(StartupClear))
}

func (s *startupSuite) TestStartupState(c *C) {
	s.transport.QueueResponse(CommandStartup, makeSuccessResponse())

	c.Check(s.tpm.Startup(StartupState), IsNil)

	_, _, parameters := s.mustUnmarshalCommand(c)
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(StartupState))
}

func (s *startupSuite) TestStartupAlreadyStarted(c *C) {
	s.transport.QueueResponse(CommandStartup, makeErrorResponse(ResponseCode(0x100)))

	err := s.tpm.Startup(StartupClear)
	c.Check(IsTPMError(err, ErrorInitialize, CommandStartup), testutil.IsTrue)
}

func (s *startupSuite) TestShutdown(c *C) {
	s.transport.QueueResponse(CommandShutdown, makeSuccessResponse())

	c.Check(s.tpm.Shutdown(StartupState), IsNil)

	_, _, parameters := s.mustUnmarshalCommand(c)
	c.Check(parameters, DeepEquals, mu.MustMarshalToBytes(StartupState))
}

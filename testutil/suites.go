// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package testutil

import (
	"github.com/ChocolateLoverRaj/uefi-tpm2"
	"github.com/ChocolateLoverRaj/uefi-tpm2/mssim"

	. "gopkg.in/check.v1"
)

// BaseTest is a base test suite for all tests.
type BaseTest struct {
	cleanupHandlers []func()
}

func (b *BaseTest) SetUpTest(c *C) {
	if len(b.cleanupHandlers) > 0 {
		panic("cleanup handlers were not executed at the end of the previous test, missing BaseTest.TearDownTest call?")
	}
}

func (b *BaseTest) TearDownTest(c *C) {
	for len(b.cleanupHandlers) > 0 {
		l := len(b.cleanupHandlers)
		fn := b.cleanupHandlers[l-1]
		b.cleanupHandlers = b.cleanupHandlers[:l-1]
		fn()
	}
}

// AddCleanup queues a function to be called at the end of the test.
func (b *BaseTest) AddCleanup(fn func()) {
	b.cleanupHandlers = append(b.cleanupHandlers, fn)
}

// CommandRecordC is a helper for CommandRecord that integrates with *check.C.
type CommandRecordC struct {
	*CommandRecord
}

func (r *CommandRecordC) GetCommandCode(c *C) tpm2.CommandCode {
	code, err := r.CommandRecord.GetCommandCode()
	c.Assert(err, IsNil)
	return code
}

func (r *CommandRecordC) UnmarshalCommand(c *C) (handles tpm2.HandleList, authArea []tpm2.AuthCommand, parameters []byte) {
	handles, authArea, parameters, err := r.CommandRecord.UnmarshalCommand()
	c.Assert(err, IsNil)
	return handles, authArea, parameters
}

func (r *CommandRecordC) UnmarshalResponse(c *C) (rc tpm2.ResponseCode, handle tpm2.Handle, parameters []byte, authArea []tpm2.AuthResponse) {
	rc, handle, parameters, authArea, err := r.CommandRecord.UnmarshalResponse()
	c.Assert(err, IsNil)
	return rc, handle, parameters, authArea
}

// TPMTest is a base test suite for tests that use a TPMContext backed by a
// real TPM implementation, selected with the test command line flags. Tests
// are skipped if no backend was selected.
//
// The test suite closes the TPMContext at the end of each test.
type TPMTest struct {
	BaseTest

	// TPM is the TPM context for the test. Set this before SetUpTest is
	// called in order to override the default context creation.
	TPM *tpm2.TPMContext

	// Transport records the commands executed during the test. Set this
	// before SetUpTest is called in order to override the default context
	// creation.
	Transport *Transport
}

func (b *TPMTest) initTPMContextIfNeeded(c *C) {
	if b.TPM != nil {
		return
	}

	transport, err := NewTransport()
	c.Assert(err, IsNil)
	if transport == nil {
		c.Skip("no TPM backend selected")
	}

	b.Transport = WrapTransport(transport)
	b.TPM = tpm2.NewTPMContext(b.Transport)
}

func (b *TPMTest) SetUpTest(c *C) {
	b.BaseTest.SetUpTest(c)
	b.initTPMContextIfNeeded(c)
	b.AddCleanup(func() {
		c.Check(b.TPM.Close(), IsNil)
		b.TPM = nil
		b.Transport = nil
	})
}

// CommandLog returns the log of commands executed so far in this test.
func (b *TPMTest) CommandLog() (log []*CommandRecordC) {
	for _, record := range b.Transport.CommandLog {
		log = append(log, &CommandRecordC{record})
	}
	return log
}

// LastCommand returns the most recently executed command. It asserts if no
// command has been executed.
func (b *TPMTest) LastCommand(c *C) *CommandRecordC {
	c.Assert(b.Transport.CommandLog, Not(HasLen), 0)
	return &CommandRecordC{b.Transport.CommandLog[len(b.Transport.CommandLog)-1]}
}

// ForgetCommands forgets the log of commands executed so far in this test.
func (b *TPMTest) ForgetCommands() {
	b.Transport.CommandLog = nil
}

// TPMSimulatorTest is a base test suite for tests that require a TPM
// simulator. Tests are skipped unless the simulator backend was selected.
type TPMSimulatorTest struct {
	TPMTest
}

func (b *TPMSimulatorTest) SetUpTest(c *C) {
	if TPMBackend != TPMBackendMssim {
		c.Skip("no TPM simulator selected")
	}
	b.TPMTest.SetUpTest(c)
}

// Mssim returns the underlying simulator transport.
func (b *TPMSimulatorTest) Mssim(c *C) *mssim.Transport {
	transport, ok := b.Transport.Unwrap().(*mssim.Transport)
	c.Assert(ok, Equals, true)
	return transport
}

// ResetTPMSimulator issues a TPM2_Shutdown -> reset -> TPM2_Startup cycle on
// the simulator.
func (b *TPMSimulatorTest) ResetTPMSimulator(c *C) {
	c.Check(b.TPM.Shutdown(tpm2.StartupClear), IsNil)
	c.Check(b.Mssim(c).Reset(), IsNil)
	c.Check(b.TPM.Startup(tpm2.StartupClear), IsNil)
}

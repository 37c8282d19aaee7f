// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

// This file contains types defined in section 6 (Constants) in
// part 2 of the library spec.

// TPMGenerated corresponds to the TPM_GENERATED type.
type TPMGenerated uint32

// TPMGeneratedValue is the value of the magic field at the start of any
// structure created by the TPM, such as an attestation.
const TPMGeneratedValue TPMGenerated = 0xff544347

// AlgorithmId corresponds to the TPM_ALG_ID type.
type AlgorithmId uint16

const (
	AlgorithmError     AlgorithmId = 0x0000
	AlgorithmRSA       AlgorithmId = 0x0001
	AlgorithmSHA1      AlgorithmId = 0x0004
	AlgorithmHMAC      AlgorithmId = 0x0005
	AlgorithmAES       AlgorithmId = 0x0006
	AlgorithmXOR       AlgorithmId = 0x000a
	AlgorithmSHA256    AlgorithmId = 0x000b
	AlgorithmSHA384    AlgorithmId = 0x000c
	AlgorithmSHA512    AlgorithmId = 0x000d
	AlgorithmNull      AlgorithmId = 0x0010
	AlgorithmSM3_256   AlgorithmId = 0x0012
	AlgorithmSM4       AlgorithmId = 0x0013
	AlgorithmRSASSA    AlgorithmId = 0x0014
	AlgorithmRSAES     AlgorithmId = 0x0015
	AlgorithmRSAPSS    AlgorithmId = 0x0016
	AlgorithmOAEP      AlgorithmId = 0x0017
	AlgorithmECDSA     AlgorithmId = 0x0018
	AlgorithmECDH      AlgorithmId = 0x0019
	AlgorithmECDAA     AlgorithmId = 0x001a
	AlgorithmSM2       AlgorithmId = 0x001b
	AlgorithmECSCHNORR AlgorithmId = 0x001c
	AlgorithmECC       AlgorithmId = 0x0023
	AlgorithmSymCipher AlgorithmId = 0x0025
	AlgorithmCamellia  AlgorithmId = 0x0026
	AlgorithmSHA3_256  AlgorithmId = 0x0027
	AlgorithmSHA3_384  AlgorithmId = 0x0028
	AlgorithmSHA3_512  AlgorithmId = 0x0029
	AlgorithmCTR       AlgorithmId = 0x0040
	AlgorithmOFB       AlgorithmId = 0x0041
	AlgorithmCBC       AlgorithmId = 0x0042
	AlgorithmCFB       AlgorithmId = 0x0043
	AlgorithmECB       AlgorithmId = 0x0044
)

// CommandCode corresponds to the TPM_CC type.
type CommandCode uint32

const (
	CommandPCREvent         CommandCode = 0x0000013c
	CommandStartup          CommandCode = 0x00000144
	CommandShutdown         CommandCode = 0x00000145
	CommandStirRandom       CommandCode = 0x00000146
	CommandQuote            CommandCode = 0x00000158
	CommandFlushContext     CommandCode = 0x00000165
	CommandStartAuthSession CommandCode = 0x00000176
	CommandGetRandom        CommandCode = 0x0000017b
	CommandPCRRead          CommandCode = 0x0000017e
	CommandPCRExtend        CommandCode = 0x00000182
)

// ResponseCode corresponds to the TPM_RC type.
type ResponseCode uint32

// ResponseSuccess corresponds to TPM_RC_SUCCESS.
const ResponseSuccess ResponseCode = 0x000

// ResponseBadTag corresponds to TPM_RC_BAD_TAG, and is returned for a
// command with a tag that the TPM does not recognize. It is the only
// TPM2 response delivered with the TPM1.2 TPM_TAG_RSP_COMMAND tag.
const ResponseBadTag ResponseCode = 0x01e

const (
	// The lower 7-bits of format-zero error codes are the error number.
	responseCodeE0 ResponseCode = 0x7f

	// The lower 6-bits of format-one error codes are the error number.
	responseCodeE1 ResponseCode = 0x3f

	// Bit 6 of format-one errors is zero for errors associated with a handle
	// or session, or one for errors associated with a parameter.
	responseCodeP ResponseCode = 1 << 6

	// Bit 7 indicates whether the error is a format-zero (0) or format-one code (1)
	responseCodeF ResponseCode = 1 << 7

	// Bit 8 of format-zero errors is zero for TPM1.2 errors and one for TPM2 errors.
	responseCodeV ResponseCode = 1 << 8

	// Bit 10 of format-zero errors is zero for TCG defined errors and one for vendor
	// defined errors.
	responseCodeT ResponseCode = 1 << 10

	// Bit 11 of format-zero errors is zero for errors and one for warnings.
	responseCodeS ResponseCode = 1 << 11

	responseCodeIndex      uint8 = 0xf
	responseCodeIndexShift uint8 = 8

	// Bits 8 to 11 of format-one errors represent the parameter number if P is set
	// or the handle or session number otherwise.
	responseCodeN ResponseCode = ResponseCode(responseCodeIndex) << responseCodeIndexShift
)

// E returns the E field of the response code, corresponding to the error number.
func (rc ResponseCode) E() uint8 {
	if rc.F() {
		return uint8(rc & responseCodeE1)
	}
	return uint8(rc & responseCodeE0)
}

// F returns the F field of the response code, corresponding to the format.
// If it is set, this is a format-one response code. If it is not set, this
// is a format-zero response code.
func (rc ResponseCode) F() bool {
	return rc&responseCodeF != 0
}

// V returns the V field of the response code. If this is set in a format-zero
// response code, then it is a TPM2 code. If it is not set, then it is a
// TPM1.2 code returned when the response tag is TPM_TAG_RSP_COMMAND.
func (rc ResponseCode) V() bool {
	return rc&responseCodeV != 0
}

// T returns the T field of the response code. If this is set in a format-zero
// response code, then the code is defined by the TPM vendor. If it is not set
// in a format-zero response code, then the code is defined by the TCG.
func (rc ResponseCode) T() bool {
	return rc&responseCodeT != 0
}

// S returns the S field of the response code. If this is set in a format-zero
// response code, then the code indicates a warning. If it is not set in a
// format-zero response code, then the code indicates an error.
func (rc ResponseCode) S() bool {
	return rc&responseCodeS != 0
}

// P returns the P field of the response code. If this is set in a format-one
// response code, then the code is associated with a command parameter. If it
// is not set in a format-one response code, then the code is associated with
// a command handle or session.
func (rc ResponseCode) P() bool {
	return rc&responseCodeP != 0
}

// N returns the N field of the response code. If the P field is set in a
// format-one response code, then this indicates the parameter number from 0x1
// to 0xf. If the P field is not set in a format-one response code, then the
// lower 3 bits indicate the handle or session number (0x1 to 0x7 for handles
// and 0x9 to 0xf for sessions).
func (rc ResponseCode) N() uint8 {
	return uint8(rc & responseCodeN >> responseCodeIndexShift)
}

// StructTag corresponds to the TPM_ST type.
type StructTag uint16

const (
	TagRspCommand StructTag = 0x00c4 // TPM_ST_RSP_COMMAND
	TagNoSessions StructTag = 0x8001 // TPM_ST_NO_SESSIONS
	TagSessions   StructTag = 0x8002 // TPM_ST_SESSIONS

	TagAttestQuote StructTag = 0x8018 // TPM_ST_ATTEST_QUOTE

	TagHashCheck StructTag = 0x8024 // TPM_ST_HASHCHECK
)

// StartupType corresponds to the TPM_SU type.
type StartupType uint16

const (
	StartupClear StartupType = iota // TPM_SU_CLEAR
	StartupState                    // TPM_SU_STATE
)

// SessionType corresponds to the TPM_SE type.
type SessionType uint8

const (
	SessionTypeHMAC   SessionType = 0x00 // TPM_SE_HMAC
	SessionTypePolicy SessionType = 0x01 // TPM_SE_POLICY
	SessionTypeTrial  SessionType = 0x03 // TPM_SE_TRIAL
)

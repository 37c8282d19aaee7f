// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

import (
	"fmt"
)

func (c CommandCode) String() string {
	switch c {
	case CommandPCREvent:
		return "TPM_CC_PCR_Event"
	case CommandStartup:
		return "TPM_CC_Startup"
	case CommandShutdown:
		return "TPM_CC_Shutdown"
	case CommandStirRandom:
		return "TPM_CC_StirRandom"
	case CommandQuote:
		return "TPM_CC_Quote"
	case CommandFlushContext:
		return "TPM_CC_FlushContext"
	case CommandStartAuthSession:
		return "TPM_CC_StartAuthSession"
	case CommandGetRandom:
		return "TPM_CC_GetRandom"
	case CommandPCRRead:
		return "TPM_CC_PCR_Read"
	case CommandPCRExtend:
		return "TPM_CC_PCR_Extend"
	default:
		return fmt.Sprintf("TPM_CC_%08x", uint32(c))
	}
}

func (e ErrorCode) String() string {
	switch e {
	case ErrorInitialize:
		return "TPM_RC_INITIALIZE"
	case ErrorFailure:
		return "TPM_RC_FAILURE"
	case ErrorSequence:
		return "TPM_RC_SEQUENCE"
	case ErrorDisabled:
		return "TPM_RC_DISABLED"
	case ErrorAuthMissing:
		return "TPM_RC_AUTH_MISSING"
	case ErrorPCR:
		return "TPM_RC_PCR"
	case ErrorCommandSize:
		return "TPM_RC_COMMAND_SIZE"
	case ErrorCommandCode:
		return "TPM_RC_COMMAND_CODE"
	case ErrorAuthsize:
		return "TPM_RC_AUTHSIZE"
	case ErrorAuthContext:
		return "TPM_RC_AUTH_CONTEXT"
	case ErrorNeedsTest:
		return "TPM_RC_NEEDS_TEST"
	case ErrorNoResult:
		return "TPM_RC_NO_RESULT"
	case ErrorAsymmetric:
		return "TPM_RC_ASYMMETRIC"
	case ErrorAttributes:
		return "TPM_RC_ATTRIBUTES"
	case ErrorHash:
		return "TPM_RC_HASH"
	case ErrorValue:
		return "TPM_RC_VALUE"
	case ErrorHierarchy:
		return "TPM_RC_HIERARCHY"
	case ErrorKeySize:
		return "TPM_RC_KEY_SIZE"
	case ErrorMGF:
		return "TPM_RC_MGF"
	case ErrorMode:
		return "TPM_RC_MODE"
	case ErrorType:
		return "TPM_RC_TYPE"
	case ErrorHandle:
		return "TPM_RC_HANDLE"
	case ErrorKDF:
		return "TPM_RC_KDF"
	case ErrorRange:
		return "TPM_RC_RANGE"
	case ErrorAuthFail:
		return "TPM_RC_AUTH_FAIL"
	case ErrorNonce:
		return "TPM_RC_NONCE"
	case ErrorPP:
		return "TPM_RC_PP"
	case ErrorScheme:
		return "TPM_RC_SCHEME"
	case ErrorSize:
		return "TPM_RC_SIZE"
	case ErrorSymmetric:
		return "TPM_RC_SYMMETRIC"
	case ErrorTag:
		return "TPM_RC_TAG"
	case ErrorSelector:
		return "TPM_RC_SELECTOR"
	case ErrorInsufficient:
		return "TPM_RC_INSUFFICIENT"
	case ErrorSignature:
		return "TPM_RC_SIGNATURE"
	case ErrorKey:
		return "TPM_RC_KEY"
	case ErrorIntegrity:
		return "TPM_RC_INTEGRITY"
	case ErrorBadAuth:
		return "TPM_RC_BAD_AUTH"
	case ErrorCurve:
		return "TPM_RC_CURVE"
	case ErrorECC:
		return "TPM_RC_ECC_POINT"
	default:
		return fmt.Sprintf("0x%02x", uint8(e))
	}
}

func (w WarningCode) String() string {
	switch w {
	case WarningContextGap:
		return "TPM_RC_CONTEXT_GAP"
	case WarningObjectMemory:
		return "TPM_RC_OBJECT_MEMORY"
	case WarningSessionMemory:
		return "TPM_RC_SESSION_MEMORY"
	case WarningMemory:
		return "TPM_RC_MEMORY"
	case WarningSessionHandles:
		return "TPM_RC_SESSION_HANDLES"
	case WarningObjectHandles:
		return "TPM_RC_OBJECT_HANDLES"
	case WarningLocality:
		return "TPM_RC_LOCALITY"
	case WarningYielded:
		return "TPM_RC_YIELDED"
	case WarningCanceled:
		return "TPM_RC_CANCELED"
	case WarningTesting:
		return "TPM_RC_TESTING"
	case WarningNVRate:
		return "TPM_RC_NV_RATE"
	case WarningLockout:
		return "TPM_RC_LOCKOUT"
	case WarningRetry:
		return "TPM_RC_RETRY"
	case WarningNVUnavailable:
		return "TPM_RC_NV_UNAVAILABLE"
	default:
		return fmt.Sprintf("0x%02x", uint8(w))
	}
}

func (a HashAlgorithmId) String() string {
	switch a {
	case HashAlgorithmNull:
		return "TPM_ALG_NULL"
	case HashAlgorithmSHA1:
		return "TPM_ALG_SHA1"
	case HashAlgorithmSHA256:
		return "TPM_ALG_SHA256"
	case HashAlgorithmSHA384:
		return "TPM_ALG_SHA384"
	case HashAlgorithmSHA512:
		return "TPM_ALG_SHA512"
	case HashAlgorithmSM3_256:
		return "TPM_ALG_SM3_256"
	case HashAlgorithmSHA3_256:
		return "TPM_ALG_SHA3_256"
	case HashAlgorithmSHA3_384:
		return "TPM_ALG_SHA3_384"
	case HashAlgorithmSHA3_512:
		return "TPM_ALG_SHA3_512"
	default:
		return fmt.Sprintf("TPM_ALG_%04x", uint16(a))
	}
}

var (
	errorCodeDescriptions = map[ErrorCode]string{
		ErrorInitialize:   "TPM not initialized by TPM2_Startup or already initialized",
		ErrorFailure:      "commands not being accepted because of a TPM failure",
		ErrorSequence:     "improper use of a sequence handle",
		ErrorDisabled:     "the command is disabled",
		ErrorAuthMissing:  "authorization handle is not correct for command",
		ErrorPCR:          "PCR check fail",
		ErrorCommandSize:  "command commandSize value is inconsistent with contents of the command buffer",
		ErrorCommandCode:  "command code not supported",
		ErrorAuthsize:     "the value of authorizationSize is out of range or the number of octets in the Authorization Area is greater than required",
		ErrorAuthContext:  "use of an authorization session with a context command or another command that cannot have an authorization session",
		ErrorNeedsTest:    "the TPM needs to be tested",
		ErrorNoResult:     "returned when an internal function cannot process a request due to an unspecified problem",
		ErrorAsymmetric:   "asymmetric algorithm not supported or not correct",
		ErrorAttributes:   "inconsistent attributes",
		ErrorHash:         "hash algorithm not supported or not appropriate",
		ErrorValue:        "value is out of range or is not correct for the context",
		ErrorHierarchy:    "hierarchy is not enabled or is not correct for the use",
		ErrorKeySize:      "key size is not supported",
		ErrorMGF:          "mask generation function not supported",
		ErrorMode:         "mode of operation not supported",
		ErrorType:         "the type of the value is not appropriate for the use",
		ErrorHandle:       "the handle is not correct for the use",
		ErrorKDF:          "unsupported key derivation function or function not appropriate for use",
		ErrorRange:        "value was out of allowed range",
		ErrorAuthFail:     "the authorization HMAC check failed and DA counter incremented",
		ErrorNonce:        "invalid nonce size or nonce value mismatch",
		ErrorPP:           "authorization requires assertion of PP",
		ErrorScheme:       "unsupported or incompatible scheme",
		ErrorSize:         "structure is the wrong size",
		ErrorSymmetric:    "unsupported symmetric algorithm or key size, or not appropriate for instance",
		ErrorTag:          "incorrect structure tag",
		ErrorSelector:     "union selector is incorrect",
		ErrorInsufficient: "the TPM was unable to unmarshal a value because there were not enough octets in the input buffer",
		ErrorSignature:    "the signature is not valid",
		ErrorKey:          "key fields are not compatible with the selected use",
		ErrorIntegrity:    "integrity check failed",
		ErrorBadAuth:      "authorization failure without DA implications",
		ErrorCurve:        "curve not supported",
		ErrorECC:          "point is not on the required curve"}

	warningCodeDescriptions = map[WarningCode]string{
		WarningContextGap:     "gap for context ID is too large",
		WarningObjectMemory:   "out of memory for object contexts",
		WarningSessionMemory:  "out of memory for session contexts",
		WarningMemory:         "out of shared object/session memory or need space for internal operations",
		WarningSessionHandles: "out of session handles - a session must be flushed before a new session may be created",
		WarningObjectHandles:  "out of object handles - the handle space for objects is depleted and a reboot is required",
		WarningLocality:       "bad locality",
		WarningYielded:        "the TPM has suspended operation on the command; forward progress was made and the command may be retried",
		WarningCanceled:       "the command was canceled",
		WarningTesting:        "TPM is performing self-tests",
		WarningNVRate:         "the TPM is rate-limiting accesses to prevent wearout of NV",
		WarningLockout:        "authorizations for objects subject to DA protection are not allowed at this time because the TPM is in DA lockout mode",
		WarningRetry:          "the TPM was not able to start the command",
		WarningNVUnavailable:  "the command may require writing of NV and NV is not current accessible"}
)

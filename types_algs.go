// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

import (
	"reflect"

	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
)

// This file contains types defined in section 11 (Algorithm Parameters
// and Structures) in part 2 of the library spec.

// 11.1) Symmetric

// SymKeyBitsU is a union type that corresponds to the TPMU_SYM_KEY_BITS
// type and is used to specify symmetric encryption key sizes. The selector
// type is SymAlgorithmId. Mapping of selector values to fields is as
// follows:
//   - SymAlgorithmAES: Sym
//   - SymAlgorithmSM4: Sym
//   - SymAlgorithmCamellia: Sym
//   - SymAlgorithmXOR: XOR
//   - SymAlgorithmNull: none
type SymKeyBitsU struct {
	Sym uint16
	XOR HashAlgorithmId
}

func (b *SymKeyBitsU) Select(selector reflect.Value) interface{} {
	switch selector.Interface().(SymAlgorithmId) {
	case SymAlgorithmAES, SymAlgorithmSM4, SymAlgorithmCamellia:
		return &b.Sym
	case SymAlgorithmXOR:
		return &b.XOR
	case SymAlgorithmNull:
		return mu.NilUnionValue
	default:
		return nil
	}
}

// SymModeU is a union type that corresponds to the TPMU_SYM_MODE type. The
// selector type is SymAlgorithmId. Mapping of selector values to fields is
// as follows:
//   - SymAlgorithmAES: Sym
//   - SymAlgorithmSM4: Sym
//   - SymAlgorithmCamellia: Sym
//   - SymAlgorithmXOR: none
//   - SymAlgorithmNull: none
type SymModeU struct {
	Sym SymModeId
}

func (m *SymModeU) Select(selector reflect.Value) interface{} {
	switch selector.Interface().(SymAlgorithmId) {
	case SymAlgorithmAES, SymAlgorithmSM4, SymAlgorithmCamellia:
		return &m.Sym
	case SymAlgorithmXOR, SymAlgorithmNull:
		return mu.NilUnionValue
	default:
		return nil
	}
}

// SymDef corresponds to the TPMT_SYM_DEF type, and is used to select the
// symmetric algorithm for a session.
type SymDef struct {
	Algorithm SymAlgorithmId // Symmetric algorithm
	KeyBits   *SymKeyBitsU   `tpm2:"selector:Algorithm"` // Symmetric key size
	Mode      *SymModeU      `tpm2:"selector:Algorithm"` // Symmetric mode
}

// SymDefNull returns a SymDef that corresponds to TPM_ALG_NULL, indicating
// that no symmetric algorithm is selected.
func SymDefNull() *SymDef {
	return &SymDef{Algorithm: SymAlgorithmNull}
}

// 11.2) Asymmetric

// PublicKeyRSA corresponds to the TPM2B_PUBLIC_KEY_RSA type.
type PublicKeyRSA []byte

// ECCParameter corresponds to the TPM2B_ECC_PARAMETER type.
type ECCParameter []byte

// SchemeHash corresponds to the TPMS_SCHEME_HASH type, and is used for
// schemes that only require a hash algorithm to complete their definition.
type SchemeHash struct {
	HashAlg HashAlgorithmId // Hash algorithm used to digest the message
}

// SchemeHMAC corresponds to the TPMS_SCHEME_HMAC type.
type SchemeHMAC = SchemeHash

// SigSchemeRSASSA corresponds to the TPMS_SIG_SCHEME_RSASSA type.
type SigSchemeRSASSA = SchemeHash

// SigSchemeRSAPSS corresponds to the TPMS_SIG_SCHEME_RSAPSS type.
type SigSchemeRSAPSS = SchemeHash

// SigSchemeECDSA corresponds to the TPMS_SIG_SCHEME_ECDSA type.
type SigSchemeECDSA = SchemeHash

// SigSchemeU is a union type that corresponds to the TPMU_SIG_SCHEME type.
// The selector type is SigSchemeId. Mapping of selector values to fields is
// as follows:
//   - SigSchemeAlgRSASSA: RSASSA
//   - SigSchemeAlgRSAPSS: RSAPSS
//   - SigSchemeAlgECDSA: ECDSA
//   - SigSchemeAlgHMAC: HMAC
//   - SigSchemeAlgNull: none
type SigSchemeU struct {
	RSASSA *SigSchemeRSASSA
	RSAPSS *SigSchemeRSAPSS
	ECDSA  *SigSchemeECDSA
	HMAC   *SchemeHMAC
}

func (s *SigSchemeU) Select(selector reflect.Value) interface{} {
	switch selector.Interface().(SigSchemeId) {
	case SigSchemeAlgRSASSA:
		return &s.RSASSA
	case SigSchemeAlgRSAPSS:
		return &s.RSAPSS
	case SigSchemeAlgECDSA:
		return &s.ECDSA
	case SigSchemeAlgHMAC:
		return &s.HMAC
	case SigSchemeAlgNull:
		return mu.NilUnionValue
	default:
		return nil
	}
}

// Any returns the details of the scheme as a *SchemeHash, regardless of the
// exact scheme. It returns nil if no scheme is present.
func (s *SigSchemeU) Any(scheme SigSchemeId) *SchemeHash {
	switch scheme {
	case SigSchemeAlgRSASSA:
		return s.RSASSA
	case SigSchemeAlgRSAPSS:
		return s.RSAPSS
	case SigSchemeAlgECDSA:
		return s.ECDSA
	case SigSchemeAlgHMAC:
		return s.HMAC
	default:
		return nil
	}
}

// SigScheme corresponds to the TPMT_SIG_SCHEME type.
type SigScheme struct {
	Scheme  SigSchemeId // Scheme selector
	Details *SigSchemeU `tpm2:"selector:Scheme"` // Scheme specific parameters
}

// 11.3) Signatures

// SignatureRSA corresponds to the TPMS_SIGNATURE_RSA type.
type SignatureRSA struct {
	Hash HashAlgorithmId // Hash algorithm used to digest the message
	Sig  PublicKeyRSA    // Signature, which is the same size as the public key
}

// SignatureRSASSA corresponds to the TPMS_SIGNATURE_RSASSA type.
type SignatureRSASSA = SignatureRSA

// SignatureRSAPSS corresponds to the TPMS_SIGNATURE_RSAPSS type.
type SignatureRSAPSS = SignatureRSA

// SignatureECC corresponds to the TPMS_SIGNATURE_ECC type.
type SignatureECC struct {
	Hash       HashAlgorithmId // Hash algorithm used in the digest process
	SignatureR ECCParameter
	SignatureS ECCParameter
}

// SignatureECDSA corresponds to the TPMS_SIGNATURE_ECDSA type.
type SignatureECDSA = SignatureECC

// SignatureU is a union type that corresponds to TPMU_SIGNATURE. The
// selector type is SigSchemeId. Mapping of selector values to fields is as
// follows:
//   - SigSchemeAlgRSASSA: RSASSA
//   - SigSchemeAlgRSAPSS: RSAPSS
//   - SigSchemeAlgECDSA: ECDSA
//   - SigSchemeAlgHMAC: HMAC
//   - SigSchemeAlgNull: none
type SignatureU struct {
	RSASSA *SignatureRSASSA
	RSAPSS *SignatureRSAPSS
	ECDSA  *SignatureECDSA
	HMAC   *TaggedHash
}

func (s *SignatureU) Select(selector reflect.Value) interface{} {
	switch selector.Interface().(SigSchemeId) {
	case SigSchemeAlgRSASSA:
		return &s.RSASSA
	case SigSchemeAlgRSAPSS:
		return &s.RSAPSS
	case SigSchemeAlgECDSA:
		return &s.ECDSA
	case SigSchemeAlgHMAC:
		return &s.HMAC
	case SigSchemeAlgNull:
		return mu.NilUnionValue
	default:
		return nil
	}
}

// Signature corresponds to the TPMT_SIGNATURE type, and represents a
// signature produced by the TPM. The union member is selected by the scheme
// that the TPM reports, so a signature with an unrecognized scheme fails to
// unmarshal rather than being misinterpreted.
type Signature struct {
	SigAlg    SigSchemeId // Signature algorithm
	Signature *SignatureU `tpm2:"selector:SigAlg"` // Actual signature
}

// HashAlg returns the digest algorithm associated with the signature, or
// HashAlgorithmNull if the signature algorithm is not recognized.
func (s *Signature) HashAlg() HashAlgorithmId {
	switch s.SigAlg {
	case SigSchemeAlgRSASSA:
		return s.Signature.RSASSA.Hash
	case SigSchemeAlgRSAPSS:
		return s.Signature.RSAPSS.Hash
	case SigSchemeAlgECDSA:
		return s.Signature.ECDSA.Hash
	case SigSchemeAlgHMAC:
		return s.Signature.HMAC.HashAlg
	default:
		return HashAlgorithmNull
	}
}

// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
	"sort"

	"golang.org/x/xerrors"

	"github.com/ChocolateLoverRaj/uefi-tpm2/mu"
)

// This file contains types defined in section 10 (Structures) in
// part 2 of the library spec.

// Empty corresponds to the TPMS_EMPTY type.
type Empty struct{}

// 10.3) Hash/Digest structures

// TaggedHash corresponds to the TPMT_HA type.
type TaggedHash struct {
	HashAlg HashAlgorithmId // Algorithm of the digest contained with Digest
	Digest  []byte          // Digest data
}

// On the wire, TPMT_HA.digest is a union type (TPMU_HA) of raw byte arrays,
// one for each hash algorithm, with no encoded length. The custom marshaller
// determines the number of digest bytes from the algorithm identifier.

func (p TaggedHash) Marshal(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, p.HashAlg); err != nil {
		return xerrors.Errorf("cannot marshal digest algorithm: %w", err)
	}
	if !p.HashAlg.IsValid() {
		return fmt.Errorf("cannot determine digest size for unknown algorithm %v", p.HashAlg)
	}

	if p.HashAlg.Size() != len(p.Digest) {
		return fmt.Errorf("invalid digest size %d", len(p.Digest))
	}

	if _, err := w.Write(p.Digest); err != nil {
		return xerrors.Errorf("cannot write digest: %w", err)
	}
	return nil
}

func (p *TaggedHash) Unmarshal(r mu.Reader) error {
	if err := binary.Read(r, binary.BigEndian, &p.HashAlg); err != nil {
		return xerrors.Errorf("cannot unmarshal digest algorithm: %w", err)
	}
	if !p.HashAlg.IsValid() {
		return xerrors.Errorf("cannot determine digest size for unknown algorithm %v: %w",
			p.HashAlg, mu.ErrMalformed)
	}

	p.Digest = make(Digest, p.HashAlg.Size())
	if _, err := io.ReadFull(r, p.Digest); err != nil {
		return xerrors.Errorf("cannot read digest: %w", err)
	}
	return nil
}

// 10.4) Sized Buffers

// Digest corresponds to the TPM2B_DIGEST type.
type Digest []byte

// Data corresponds to the TPM2B_DATA type.
type Data []byte

// Nonce corresponds to the TPM2B_NONCE type.
type Nonce Digest

// Auth corresponds to the TPM2B_AUTH type.
type Auth Digest

const (
	// EventMaxSize indicates the maximum size of arguments of the Event type.
	EventMaxSize = 1024
)

// Event corresponds to the TPM2B_EVENT type. The largest size of this is
// indicated by EventMaxSize.
type Event []byte

// SensitiveData corresponds to the TPM2B_SENSITIVE_DATA type.
type SensitiveData []byte

// EncryptedSecret corresponds to the TPM2B_ENCRYPTED_SECRET type.
type EncryptedSecret []byte

// 10.5) Names

// Name corresponds to the TPM2B_NAME type.
type Name []byte

// NameType describes the type of a name.
type NameType int

const (
	// NameTypeInvalid means that a Name is invalid.
	NameTypeInvalid NameType = iota

	// NameTypeHandle means that a Name is a handle.
	NameTypeHandle

	// NameTypeDigest means that a Name is a digest.
	NameTypeDigest
)

// Type determines the type of this name.
func (n Name) Type() NameType {
	if len(n) < binary.Size(HashAlgorithmId(0)) {
		return NameTypeInvalid
	}
	if len(n) == binary.Size(Handle(0)) {
		return NameTypeHandle
	}

	alg := HashAlgorithmId(binary.BigEndian.Uint16(n))
	if !alg.IsValid() {
		return NameTypeInvalid
	}

	if len(n)-binary.Size(HashAlgorithmId(0)) != alg.Size() {
		return NameTypeInvalid
	}

	return NameTypeDigest
}

// Handle returns the handle of the resource that this name corresponds to. If
// Type does not return NameTypeHandle, it will panic.
func (n Name) Handle() Handle {
	if n.Type() != NameTypeHandle {
		panic("name is not a handle")
	}
	return Handle(binary.BigEndian.Uint32(n))
}

// Algorithm returns the digest algorithm of this name. If Type does not return
// NameTypeDigest, it will return HashAlgorithmNull.
func (n Name) Algorithm() HashAlgorithmId {
	if n.Type() != NameTypeDigest {
		return HashAlgorithmNull
	}

	return HashAlgorithmId(binary.BigEndian.Uint16(n))
}

// Digest returns the name as a digest without the algorithm identifier. If
// Type does not return NameTypeDigest, it will panic.
func (n Name) Digest() Digest {
	if n.Type() != NameTypeDigest {
		panic("name is not a valid digest")
	}
	return Digest(n[binary.Size(HashAlgorithmId(0)):])
}

// 10.6) PCR Structures

// PCRSelect is a slice of PCR indexes. It is marshalled to and from the
// TPMS_PCR_SELECT type, which is a bitmap of the PCR indices contained
// within this slice.
type PCRSelect []int

func (d PCRSelect) Marshal(w io.Writer) error {
	// sizeofSelect is at least the minimum defined by the platform spec.
	bytes := make([]byte, 3)

	for _, i := range d {
		octet := i / 8
		for octet >= len(bytes) {
			bytes = append(bytes, byte(0))
		}
		bit := uint(i % 8)
		bytes[octet] |= 1 << bit
	}

	if err := binary.Write(w, binary.BigEndian, uint8(len(bytes))); err != nil {
		return xerrors.Errorf("cannot write size of PCR selection bit mask: %w", err)
	}

	if _, err := w.Write(bytes); err != nil {
		return xerrors.Errorf("cannot write PCR selection bit mask: %w", err)
	}
	return nil
}

func (d *PCRSelect) Unmarshal(r mu.Reader) error {
	var size uint8
	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		return xerrors.Errorf("cannot read size of PCR selection bit mask: %w", err)
	}
	if int(size) > r.Len() {
		return xerrors.Errorf("size field of PCR selection bit mask is larger than the remaining bytes: %w",
			mu.ErrMalformed)
	}

	bytes := make([]byte, size)

	if _, err := io.ReadFull(r, bytes); err != nil {
		return xerrors.Errorf("cannot read PCR selection bit mask: %w", err)
	}

	*d = make(PCRSelect, 0)

	for i, octet := range bytes {
		for bit := uint(0); bit < 8; bit++ {
			if octet&(1<<bit) == 0 {
				continue
			}
			*d = append(*d, int((uint(i)*8)+bit))
		}
	}

	return nil
}

// PCRSelection corresponds to the TPMS_PCR_SELECTION type.
type PCRSelection struct {
	Hash   HashAlgorithmId // Hash is the digest algorithm associated with the selection
	Select PCRSelect       // The selected PCRs
}

// 10.9) Lists

// DigestList is a slice of Digest values, and corresponds to the TPML_DIGEST
// type.
type DigestList []Digest

// TaggedHashList is a slice of TaggedHash values, and corresponds to the
// TPML_DIGEST_VALUES type.
type TaggedHashList []TaggedHash

// PCRSelectionList is a slice of PCRSelection values, and corresponds to the
// TPML_PCR_SELECTION type.
type PCRSelectionList []PCRSelection

// Equal indicates whether l and r contain the same PCR selections. Equal
// selections will marshal to the same bytes in the TPM wire format. To be
// considered equal, each set of selections must be identical length, contain
// the same PCR banks in the same order, and each PCR bank must contain the
// same set of PCRs - the order of the PCRs listed in each bank are not
// important because that ordering is not preserved on the wire and PCRs are
// selected in ascending numerical order.
func (l PCRSelectionList) Equal(r PCRSelectionList) bool {
	lb := mu.MustMarshalToBytes(l)
	rb := mu.MustMarshalToBytes(r)
	return bytes.Equal(lb, rb)
}

// Sort will sort the list of PCR selections in order of ascending algorithm
// ID. A new list of selections is returned.
func (l PCRSelectionList) Sort() (out PCRSelectionList) {
	mu.MustCopyValue(&out, l)
	sort.Slice(out, func(i, j int) bool { return out[i].Hash < out[j].Hash })
	return
}

// Merge will merge the PCR selections specified by l and r together and
// return a new set of PCR selections which contains a combination of both.
// For each PCR found in r that isn't found in l, it will be added to the
// first occurence of the corresponding PCR bank found in l if that exists,
// or otherwise a selection for that PCR bank will be appended to the result.
func (l PCRSelectionList) Merge(r PCRSelectionList) (out PCRSelectionList) {
	mu.MustCopyValue(&out, l)
	mu.MustCopyValue(&r, r)

	for _, sr := range r {
		for _, pr := range sr.Select {
			found := false
			for _, so := range out {
				if so.Hash != sr.Hash {
					continue
				}
				for _, po := range so.Select {
					if po == pr {
						found = true
					}
					if po >= pr {
						break
					}
				}
				if found {
					break
				}
			}

			if !found {
				added := false
				for i, so := range out {
					if so.Hash != sr.Hash {
						continue
					}
					out[i].Select = append(so.Select, pr)
					added = true
					break
				}
				if !added {
					out = append(out, PCRSelection{Hash: sr.Hash, Select: []int{pr}})
				}
			}
		}
	}

	mu.MustCopyValue(&out, out)
	return out
}

// Remove will remove the PCR selections in r from the PCR selections in l,
// and return a new set of selections.
func (l PCRSelectionList) Remove(r PCRSelectionList) (out PCRSelectionList) {
	mu.MustCopyValue(&out, l)
	mu.MustCopyValue(&r, r)

	for _, sr := range r {
		for _, pr := range sr.Select {
			for i, so := range out {
				if so.Hash != sr.Hash {
					continue
				}
				for j, po := range so.Select {
					if po == pr {
						if j < len(so.Select)-1 {
							copy(out[i].Select[j:], so.Select[j+1:])
						}
						out[i].Select = so.Select[:len(so.Select)-1]
					}
					if po >= pr {
						break
					}
				}
			}
		}
	}

	for i, so := range out {
		if len(so.Select) > 0 {
			continue
		}
		if i < len(out)-1 {
			copy(out[i:], out[i+1:])
		}
		out = out[:len(out)-1]
	}
	return
}

// IsEmpty returns true if the list of PCR selections selects no PCRs.
func (l PCRSelectionList) IsEmpty() bool {
	for _, s := range l {
		if len(s.Select) > 0 {
			return false
		}
	}
	return true
}

// PCRValues contains a collection of PCR values, keyed by PCR bank and then
// by PCR index.
type PCRValues map[HashAlgorithmId]map[int]Digest

// SelectionList computes the list of PCR selections corresponding to this
// set of PCR values.
func (v PCRValues) SelectionList() (out PCRSelectionList) {
	for h := range v {
		s := PCRSelection{Hash: h}
		for p := range v[h] {
			s.Select = append(s.Select, p)
		}
		sort.Ints(s.Select)
		out = append(out, s)
	}
	return out.Sort()
}

// SetValuesFromListAndSelection sets PCR values from the supplied list of
// digests and corresponding list of PCR selections. Digests are consumed
// from the list in the order that PCRs appear on the wire - by bank in the
// order of the selections and by ascending PCR index within each bank. It
// returns the number of digests consumed.
func (v PCRValues) SetValuesFromListAndSelection(selections PCRSelectionList, digests DigestList) (int, error) {
	i := 0
	for _, sel := range selections {
		if !sel.Hash.IsValid() {
			return 0, fmt.Errorf("invalid digest algorithm %v in PCR selection", sel.Hash)
		}
		sort.Ints(sel.Select)
		for _, pcr := range sel.Select {
			if len(digests) == 0 {
				return 0, fmt.Errorf("insufficient digests for PCR selection")
			}
			digest := digests[0]
			digests = digests[1:]
			if len(digest) != sel.Hash.Size() {
				return 0, fmt.Errorf("digest for PCR %d in bank %v has unexpected size", pcr, sel.Hash)
			}
			v.SetValue(sel.Hash, pcr, digest)
			i++
		}
	}
	return i, nil
}

// SetValue sets the value of the PCR at the specified index of the specified
// bank.
func (v PCRValues) SetValue(alg HashAlgorithmId, pcr int, digest Digest) {
	if _, ok := v[alg]; !ok {
		v[alg] = make(map[int]Digest)
	}
	v[alg][pcr] = digest
}

// 10.11) Clock/Counter Structures

// ClockInfo corresponds to the TPMS_CLOCK_INFO type.
type ClockInfo struct {
	// Clock is the time value in milliseconds that increments whilst the TPM
	// is powered.
	Clock uint64

	// ResetCount is the number of TPM resets since the TPM was last cleared.
	ResetCount uint32

	// RestartCount is the number of TPM restarts or resumes since the last
	// TPM reset or the last time the TPM was cleared.
	RestartCount uint32

	// Safe indicates that the value reported by Clock is guaranteed to be
	// unique for the current owner.
	Safe bool
}

// 10.12) Attestation Structures

// QuoteInfo corresponds to the TPMS_QUOTE_INFO type, and is the attestation
// data produced by TPMContext.Quote.
type QuoteInfo struct {
	PCRSelect PCRSelectionList // PCRs included in PCRDigest
	PCRDigest Digest           // Digest of the selected PCRs, using the hash algorithm of the signing key
}

// AttestU is a union type that corresponds to the TPMU_ATTEST type. The
// selector type is StructTag. Mapping of selector values to fields is as
// follows:
//   - TagAttestQuote: Quote
type AttestU struct {
	Quote *QuoteInfo
}

func (a *AttestU) Select(selector reflect.Value) interface{} {
	switch selector.Interface().(StructTag) {
	case TagAttestQuote:
		return &a.Quote
	default:
		return nil
	}
}

// Attest corresponds to the TPMS_ATTEST type, and is the unmarshalled form
// of the structure over which an attestation signature is computed.
type Attest struct {
	Magic           TPMGenerated // Always TPMGeneratedValue
	Type            StructTag    // Type of the attestation structure
	QualifiedSigner Name         // Qualified name of the signing key
	ExtraData       Data         // External information provided by the caller
	ClockInfo       ClockInfo    // Clock information
	FirmwareVersion uint64       // TPM vendor specific value indicating the version of the firmware
	Attested        *AttestU     `tpm2:"selector:Type"` // Type specific attestation data
}

// AttestRaw corresponds to the TPM2B_ATTEST type, and is the signed
// attestation structure in its original wire form. Decoding into an Attest
// is deferred so that the signature can be verified over the exact bytes the
// TPM produced.
type AttestRaw []byte

// Decode unmarshals the attestation structure, and checks that it carries
// the TPM generated magic value.
func (a AttestRaw) Decode() (*Attest, error) {
	out := new(Attest)
	if _, err := mu.UnmarshalFromBytes(a, out); err != nil {
		return nil, err
	}
	if out.Magic != TPMGeneratedValue {
		return nil, fmt.Errorf("attestation structure has invalid magic value 0x%08x", uint32(out.Magic))
	}
	return out, nil
}

// 10.13) Authorization Structures

// AuthCommand corresponds to the TPMS_AUTH_COMMAND type, and represents an
// authorization for a command.
type AuthCommand struct {
	SessionHandle     Handle
	Nonce             Nonce
	SessionAttributes SessionAttributes
	HMAC              Auth
}

// AuthResponse corresponds to the TPMS_AUTH_RESPONSE type, and represents an
// authorization response for a command.
type AuthResponse struct {
	Nonce             Nonce
	SessionAttributes SessionAttributes
	HMAC              Auth
}

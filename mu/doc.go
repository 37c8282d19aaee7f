// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

/*
Package mu provides helpers for marshalling to and unmarshalling from the TPM
wire format, which consists of big-endian fixed-width integers, size-prefixed
byte buffers (TPM2B types), count-prefixed lists (TPML types), plain
structures (TPMS types) and selector-tagged unions (TPMT / TPMU types).

Go types are mapped to the wire format as follows:

  - Unsigned fixed-width integers and bools are marshalled big-endian.
  - Byte slices are marshalled as sized buffers with a 16-bit size field,
    unless the slice is a RawBytes type or the field has the `tpm2:"raw"`
    tag, in which case no size field is written.
  - Other slices are marshalled as lists with a 32-bit count field.
  - Structures are marshalled field by field in declaration order. A pointer
    field with the `tpm2:"sized"` tag is marshalled as a sized structure
    with a 16-bit size field, where a nil pointer corresponds to a zero size.
  - Structures implementing the Union interface are marshalled according to
    the selector field named by the enclosing struct's
    `tpm2:"selector:<Field>"` tag.
  - Types implementing CustomMarshaller and CustomUnmarshaller marshal
    themselves.

Unmarshalling never trusts a size or count field: every declared length is
checked against the number of bytes actually remaining in the input before
any allocation happens. Inputs that are too short produce errors wrapping
ErrTruncated, and size or count fields that overcommit the input produce
errors wrapping ErrMalformed. Neither condition is ever silently recovered.
*/
package mu

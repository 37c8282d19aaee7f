// Copyright 2026 ChocolateLoverRaj
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

/*
Package tcglog provides a parser for the measurement log that platform
firmware produces alongside the PCR extends it performs, in the crypto-agile
format defined by the TCG PC Client Platform Firmware Profile specification
for TPM family 2.0 devices.

A verifier replays the log with Log.Replay and compares the result against
the live PCR values read from the TPM - a log that doesn't reproduce the PCR
values has been tampered with or truncated and none of its events can be
trusted.
*/
package tcglog

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/xerrors"

	"github.com/ChocolateLoverRaj/uefi-tpm2"
)

// ErrLogTruncated is returned (wrapped) from ReadLog if the log ends in the
// middle of an event. A truncated log cannot account for the state of the
// PCRs it describes, so none of its events can be verified.
var ErrLogTruncated = errors.New("event log is truncated")

const specIdEventSignature = "Spec ID Event03"

// Event corresponds to a single event in an event log.
type Event struct {
	PCRIndex  PCRIndex  // PCR index to which this event was measured
	EventType EventType // The type of this event
	Digests   DigestMap // The digests recorded for this event, one per supported algorithm
	Data      []byte    // The data recorded with this event
}

// AlgorithmSize represents a digest algorithm and its length, and corresponds
// to the TCG_EfiSpecIdEventAlgorithmSize type.
type AlgorithmSize struct {
	AlgorithmId tpm2.HashAlgorithmId
	DigestSize  uint16
}

// SpecIdEvent corresponds to the TCG_EfiSpecIdEvent type - the data of the
// Specification ID Version EV_NO_ACTION event that opens a crypto-agile log.
type SpecIdEvent struct {
	PlatformClass    uint32
	SpecVersionMinor uint8
	SpecVersionMajor uint8
	SpecErrata       uint8
	UintnSize        uint8
	DigestSizes      []AlgorithmSize // The digest algorithms contained within this log
	VendorInfo       []byte
}

// Log corresponds to a parsed event log.
type Log struct {
	Spec            SpecIdEvent     // The specification ID event that opened the log
	Algorithms      AlgorithmIdList // The digest algorithms that appear in the log
	StartupLocality uint8           // The locality from which TPM2_Startup was executed, which affects the reset value of PCR 0
	Events          []*Event        // The list of events in the log, not including the specification ID event
}

func eofIsUnexpected(err error) error {
	if err == io.EOF {
		return xerrors.Errorf("%w: %v", ErrLogTruncated, io.ErrUnexpectedEOF)
	}
	if err == io.ErrUnexpectedEOF {
		return xerrors.Errorf("%w: %v", ErrLogTruncated, err)
	}
	return err
}

type eventHeader struct {
	PCRIndex  PCRIndex
	EventType EventType
}

// readSpecIdEvent reads the opening event of a crypto-agile log, which is in
// the SHA-1 log format with a zero digest.
func readSpecIdEvent(r io.Reader) (*SpecIdEvent, error) {
	var header eventHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, eofIsUnexpected(err)
	}
	if header.PCRIndex != 0 || header.EventType != EventTypeNoAction {
		return nil, fmt.Errorf("unexpected header for specification ID event (PCR index %d, type %v)", header.PCRIndex, header.EventType)
	}

	// SHA-1 sized digest, which is zero for EV_NO_ACTION events.
	digest := make([]byte, 20)
	if _, err := io.ReadFull(r, digest); err != nil {
		return nil, eofIsUnexpected(err)
	}

	var eventSize uint32
	if err := binary.Read(r, binary.LittleEndian, &eventSize); err != nil {
		return nil, eofIsUnexpected(err)
	}

	// The size is log-controlled, so the data is read incrementally rather
	// than sizing an allocation from it.
	var data bytes.Buffer
	if _, err := io.CopyN(&data, r, int64(eventSize)); err != nil {
		return nil, eofIsUnexpected(err)
	}

	dataReader := bytes.NewReader(data.Bytes())

	var signature [16]byte
	if _, err := io.ReadFull(dataReader, signature[:]); err != nil {
		return nil, eofIsUnexpected(err)
	}
	if strings.TrimRight(string(signature[:]), "\x00") != specIdEventSignature {
		return nil, fmt.Errorf("unexpected signature %q for specification ID event", strings.TrimRight(string(signature[:]), "\x00"))
	}

	var hdr struct {
		PlatformClass      uint32
		SpecVersionMinor   uint8
		SpecVersionMajor   uint8
		SpecErrata         uint8
		UintnSize          uint8
		NumberOfAlgorithms uint32
	}
	if err := binary.Read(dataReader, binary.LittleEndian, &hdr); err != nil {
		return nil, eofIsUnexpected(err)
	}
	if hdr.NumberOfAlgorithms < 1 {
		return nil, errors.New("numberOfAlgorithms is zero")
	}
	if int64(hdr.NumberOfAlgorithms)*int64(binary.Size(AlgorithmSize{})) > int64(dataReader.Len()) {
		return nil, errors.New("numberOfAlgorithms is larger than the remaining event data")
	}

	out := &SpecIdEvent{
		PlatformClass:    hdr.PlatformClass,
		SpecVersionMinor: hdr.SpecVersionMinor,
		SpecVersionMajor: hdr.SpecVersionMajor,
		SpecErrata:       hdr.SpecErrata,
		UintnSize:        hdr.UintnSize}

	out.DigestSizes = make([]AlgorithmSize, hdr.NumberOfAlgorithms)
	if err := binary.Read(dataReader, binary.LittleEndian, out.DigestSizes); err != nil {
		return nil, eofIsUnexpected(err)
	}
	for _, d := range out.DigestSizes {
		if d.AlgorithmId.IsValid() && d.AlgorithmId.Size() != int(d.DigestSize) {
			return nil, fmt.Errorf("digestSize for algorithmId %v does not match expected size", d.AlgorithmId)
		}
	}

	var vendorInfoSize uint8
	if err := binary.Read(dataReader, binary.LittleEndian, &vendorInfoSize); err != nil {
		return nil, eofIsUnexpected(err)
	}
	out.VendorInfo = make([]byte, vendorInfoSize)
	if _, err := io.ReadFull(dataReader, out.VendorInfo); err != nil {
		return nil, eofIsUnexpected(err)
	}

	return out, nil
}

func isPCRIndexInRange(index PCRIndex) bool {
	const maxPCRIndex PCRIndex = 31
	return index <= maxPCRIndex
}

// readEvent reads one crypto-agile (TCG_PCR_EVENT2) event.
func readEvent(r io.Reader, digestSizes []AlgorithmSize) (*Event, error) {
	var header struct {
		eventHeader
		Count uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		// A clean EOF here is the end of the log.
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, eofIsUnexpected(err)
	}

	if !isPCRIndexInRange(header.PCRIndex) {
		return nil, fmt.Errorf("log entry has an out-of-range PCR index (%d)", header.PCRIndex)
	}

	digests := make(DigestMap)
	for i := uint32(0); i < header.Count; i++ {
		var algorithmId tpm2.HashAlgorithmId
		if err := binary.Read(r, binary.LittleEndian, &algorithmId); err != nil {
			return nil, eofIsUnexpected(err)
		}

		var digestSize uint16
		var j int
		for j = 0; j < len(digestSizes); j++ {
			if digestSizes[j].AlgorithmId == algorithmId {
				digestSize = digestSizes[j].DigestSize
				break
			}
		}
		if j == len(digestSizes) {
			return nil, fmt.Errorf("event contains a digest for an unrecognized algorithm (%v)", algorithmId)
		}

		digest := make(Digest, digestSize)
		if _, err := io.ReadFull(r, digest); err != nil {
			return nil, eofIsUnexpected(err)
		}

		if _, exists := digests[algorithmId]; exists {
			return nil, fmt.Errorf("event contains more than one digest value for algorithm %v", algorithmId)
		}
		digests[algorithmId] = digest
	}

	var eventSize uint32
	if err := binary.Read(r, binary.LittleEndian, &eventSize); err != nil {
		return nil, eofIsUnexpected(err)
	}

	var data bytes.Buffer
	if _, err := io.CopyN(&data, r, int64(eventSize)); err != nil {
		return nil, eofIsUnexpected(err)
	}

	return &Event{
		PCRIndex:  header.PCRIndex,
		EventType: header.EventType,
		Digests:   digests,
		Data:      data.Bytes()}, nil
}

const startupLocalitySignature = "StartupLocality"

// ReadLog reads a crypto-agile event log from r, in the format defined in the
// TCG PC Client Platform Firmware Profile specification for TPM family 2.0
// devices. A log that ends in the middle of an event returns an error that
// wraps ErrLogTruncated.
func ReadLog(r io.Reader) (*Log, error) {
	spec, err := readSpecIdEvent(r)
	if err != nil {
		return nil, xerrors.Errorf("cannot read specification ID event: %w", err)
	}

	log := &Log{Spec: *spec}
	for _, s := range spec.DigestSizes {
		if s.AlgorithmId.IsValid() {
			log.Algorithms = append(log.Algorithms, s.AlgorithmId)
		}
	}

	for {
		event, err := readEvent(r, spec.DigestSizes)
		switch {
		case err == io.EOF:
			return log, nil
		case err != nil:
			return nil, err
		}

		// The startup locality event modifies the reset value of PCR 0
		// without being extended to it.
		if event.PCRIndex == 0 && event.EventType == EventTypeNoAction &&
			len(event.Data) == 17 &&
			strings.TrimRight(string(event.Data[:16]), "\x00") == startupLocalitySignature {
			log.StartupLocality = event.Data[16]
		}

		log.Events = append(log.Events, event)
	}
}

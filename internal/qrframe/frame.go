// Package qrframe builds and parses the QRAudio wire frame: an 8-byte
// header, the (possibly FEC-encoded) payload, and a trailing CRC-16/X.25.
package qrframe

import (
	"errors"

	"github.com/Hello10/qraudio-go/internal/crc16x25"
	"github.com/Hello10/qraudio-go/internal/profile"
)

// Magic is the 4-byte frame signature "QRA1".
var Magic = [4]byte{0x51, 0x52, 0x41, 0x31}

// Version is the only wire version this implementation speaks.
const Version = 0x01

// Flag bits within the header's FLAGS byte.
const (
	FlagFEC  byte = 1 << 0
	FlagGzip byte = 1 << 1
)

const headerLen = 4 + 1 + 1 + 2 // magic + version + flags + payload length
const trailerLen = 2            // CRC
const minFrameLen = headerLen + trailerLen

// ErrBadMagic is returned when a candidate frame does not start with Magic.
var ErrBadMagic = errors.New("qrframe: bad magic")

// ErrBadVersion is returned when the VERSION byte does not match Version.
var ErrBadVersion = errors.New("qrframe: unsupported version")

// ErrUnknownProfile is returned when the flags byte's profile tag does not
// name a registered profile.
var ErrUnknownProfile = errors.New("qrframe: unknown profile")

// ErrTooShort is returned when data is shorter than the minimum frame size.
var ErrTooShort = errors.New("qrframe: frame too short")

// Header is the decoded fixed-size portion of a frame.
type Header struct {
	Flags         byte
	PayloadLength uint16
	Profile       profile.Name
	GzipEnabled   bool
	FECEnabled    bool
}

// Parsed is the result of successfully parsing a candidate frame.
type Parsed struct {
	Header         Header
	PayloadWithFEC []byte
	CRCExpected    uint16
	CRCActual      uint16
	Raw            []byte
}

// Build assembles a complete frame: header + payloadWithFEC + CRC.
func Build(payloadWithFEC []byte, payloadLength int, flags byte) []byte {
	header := make([]byte, headerLen)
	copy(header[0:4], Magic[:])
	header[4] = Version
	header[5] = flags
	header[6] = byte(payloadLength >> 8)
	header[7] = byte(payloadLength)

	frameNoCRC := make([]byte, 0, headerLen+len(payloadWithFEC))
	frameNoCRC = append(frameNoCRC, header...)
	frameNoCRC = append(frameNoCRC, payloadWithFEC...)

	crc := crc16x25.Checksum(frameNoCRC)
	return append(frameNoCRC, byte(crc), byte(crc>>8))
}

// Parse validates the fixed header fields of data and extracts the
// payload-with-FEC region. CRC mismatch is not treated as a parse failure:
// both the expected and actually-computed CRC are returned so the caller
// can decide whether FEC-based recovery is worth attempting.
func Parse(data []byte) (*Parsed, error) {
	if len(data) < minFrameLen {
		return nil, ErrTooShort
	}
	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return nil, ErrBadMagic
	}
	if data[4] != Version {
		return nil, ErrBadVersion
	}

	flags := data[5]
	payloadLength := uint16(data[6])<<8 | uint16(data[7])
	payloadWithFEC := data[8 : len(data)-2]

	crcExpected := uint16(data[len(data)-1])<<8 | uint16(data[len(data)-2])
	crcActual := crc16x25.Checksum(data[:len(data)-2])

	prof, ok := profile.FromFlags(flags)
	if !ok {
		return nil, ErrUnknownProfile
	}

	return &Parsed{
		Header: Header{
			Flags:         flags,
			PayloadLength: payloadLength,
			Profile:       prof,
			GzipEnabled:   flags&FlagGzip != 0,
			FECEnabled:    flags&FlagFEC != 0,
		},
		PayloadWithFEC: payloadWithFEC,
		CRCExpected:    crcExpected,
		CRCActual:      crcActual,
		Raw:            data,
	}, nil
}

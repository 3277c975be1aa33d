// internal/pumpfun/state.go
package pumpfun

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// curveStateDiscriminator is the anchor account discriminator of the pump.fun
// BondingCurve account (6966180631402821399 little-endian).
var curveStateDiscriminator = []byte{0x17, 0xb7, 0xf8, 0x37, 0x60, 0xd8, 0xac, 0x60}

// curveStateMinLen covers the discriminator, five u64 reserve fields and the
// completion flag byte.
const curveStateMinLen = 8 + 5*8 + 1

// CurveState is a decoded snapshot of a bonding curve account. It is built
// fresh on every account read and never mutated afterwards.
type CurveState struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}

// DecodeErrorKind classifies curve state decode failures.
type DecodeErrorKind int

const (
	// DecodeTooShort means the account data cannot hold a curve state.
	DecodeTooShort DecodeErrorKind = iota
	// DecodeBadDiscriminator means the account is not a bonding curve: wrong
	// address, wrong program or an incompatible layout version.
	DecodeBadDiscriminator
)

// DecodeError is a terminal, non-retryable decode failure. A corrupt or
// mismatched account is a logic error, not a transient condition.
type DecodeError struct {
	Kind DecodeErrorKind
	Len  int
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case DecodeTooShort:
		return fmt.Sprintf("curve state too short: %d bytes, need %d", e.Len, curveStateMinLen)
	case DecodeBadDiscriminator:
		return "invalid curve state discriminator"
	default:
		return "curve state decode failed"
	}
}

// IsDecodeError reports whether err is a curve state decode failure of the
// given kind.
func IsDecodeError(err error, kind DecodeErrorKind) bool {
	var de *DecodeError
	if !errors.As(err, &de) {
		return false
	}
	return de.Kind == kind
}

// DecodeCurveState parses raw bonding curve account data. The leading 8 bytes
// must match the BondingCurve account discriminator; a mismatched layout is
// never decoded best-effort.
func DecodeCurveState(data []byte) (*CurveState, error) {
	if len(data) < curveStateMinLen {
		return nil, &DecodeError{Kind: DecodeTooShort, Len: len(data)}
	}
	if !bytes.Equal(data[:8], curveStateDiscriminator) {
		return nil, &DecodeError{Kind: DecodeBadDiscriminator, Len: len(data)}
	}

	var state CurveState
	if err := bin.NewBorshDecoder(data[8:]).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode curve state fields: %w", err)
	}
	return &state, nil
}

// EncodeCurveState renders a curve state back into account-data layout. Used
// by the curve inspector's fixtures and tests; the trading path only decodes.
func EncodeCurveState(state *CurveState) []byte {
	buf := make([]byte, curveStateMinLen)
	copy(buf[:8], curveStateDiscriminator)
	binary.LittleEndian.PutUint64(buf[8:16], state.VirtualTokenReserves)
	binary.LittleEndian.PutUint64(buf[16:24], state.VirtualSolReserves)
	binary.LittleEndian.PutUint64(buf[24:32], state.RealTokenReserves)
	binary.LittleEndian.PutUint64(buf[32:40], state.RealSolReserves)
	binary.LittleEndian.PutUint64(buf[40:48], state.TokenTotalSupply)
	if state.Complete {
		buf[48] = 1
	}
	return buf
}

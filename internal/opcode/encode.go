package opcode

import (
	"encoding/binary"
	"math"
)

// payloadSize returns the number of raw payload bytes (before
// even-padding) for d, given that it is fixed per discriminant.
func payloadSize(d Discriminant) int {
	switch d {
	case DPushDataSecRef, DRepushStackEntry:
		return 4
	case DPushPrimitive:
		return 9 // 1 kind byte + 8 value bytes
	case DPushRefToStack:
		return 5 // 1 kind byte + 4 idx bytes
	case DStackTopToReg, DReadReg:
		return 1
	case DExit:
		return 4
	default:
		return 0
	}
}

// SerializedSize returns the number of bytes Encode(op) produces: 2
// (discriminant) + payload, rounded up to even.
func SerializedSize(op Op) int {
	n := 2 + payloadSize(op.Disc)
	if n%2 != 0 {
		n++
	}
	return n
}

// Encode appends op's binary encoding to buf and returns the result.
func Encode(buf []byte, op Op) []byte {
	start := len(buf)
	var discBuf [2]byte
	binary.LittleEndian.PutUint16(discBuf[:], uint16(op.Disc))
	buf = append(buf, discBuf[:]...)

	switch op.Disc {
	case DPushDataSecRef, DRepushStackEntry:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], op.U32)
		buf = append(buf, b[:]...)
	case DPushPrimitive:
		buf = append(buf, byte(op.Copy.Kind))
		var b [8]byte
		switch op.Copy.Kind {
		case CopyInt:
			binary.LittleEndian.PutUint64(b[:], uint64(op.Copy.Int))
		case CopyFloat:
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(op.Copy.Float))
		case CopyBool:
			if op.Copy.Bool {
				b[0] = 1
			}
		case CopyUnit:
			// no bits to write
		}
		buf = append(buf, b[:]...)
	case DPushRefToStack:
		buf = append(buf, byte(op.Ref.Kind))
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], op.Ref.Idx)
		buf = append(buf, b[:]...)
	case DStackTopToReg, DReadReg:
		buf = append(buf, op.U8)
	case DExit:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(op.I32))
		buf = append(buf, b[:]...)
	}

	if (len(buf)-start)%2 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// Decode reads one instruction starting at buf[0] and returns it along
// with the number of bytes consumed (equal to SerializedSize(op)).
// ErrTruncated is returned if buf does not hold a full instruction.
func Decode(buf []byte) (Op, int, error) {
	if len(buf) < 2 {
		return Op{}, 0, ErrTruncated
	}
	disc := Discriminant(binary.LittleEndian.Uint16(buf[:2]))
	size := payloadSize(disc)
	if len(buf) < 2+size {
		return Op{}, 0, ErrTruncated
	}
	payload := buf[2 : 2+size]

	var op Op
	op.Disc = disc
	switch disc {
	case DPushDataSecRef, DRepushStackEntry:
		op.U32 = binary.LittleEndian.Uint32(payload)
	case DPushPrimitive:
		op.Copy.Kind = CopyKind(payload[0])
		bits := binary.LittleEndian.Uint64(payload[1:9])
		switch op.Copy.Kind {
		case CopyInt:
			op.Copy.Int = int64(bits)
		case CopyFloat:
			op.Copy.Float = math.Float64frombits(bits)
		case CopyBool:
			op.Copy.Bool = payload[1] != 0
		}
	case DPushRefToStack:
		op.Ref.Kind = DataRefKind(payload[0])
		op.Ref.Idx = binary.LittleEndian.Uint32(payload[1:5])
	case DStackTopToReg, DReadReg:
		op.U8 = payload[0]
	case DExit:
		op.I32 = int32(binary.LittleEndian.Uint32(payload))
	case DExec, DStrCat, DToStr, DToBool, DPop, DPopFree:
		// tag-only
	default:
		return Op{}, 0, ErrUnknownOpcode
	}

	total := 2 + size
	if total%2 != 0 {
		total++
	}
	return op, total, nil
}

package opcode

import "testing"

func allOps() []Op {
	return []Op{
		Exec(),
		StrCat(),
		PushDataSecRef(7),
		PushPrimitive(CopyValue{Kind: CopyInt, Int: -42}),
		PushPrimitive(CopyValue{Kind: CopyFloat, Float: 3.25}),
		PushPrimitive(CopyValue{Kind: CopyBool, Bool: true}),
		PushPrimitive(CopyValue{Kind: CopyUnit}),
		RepushStackEntry(3),
		PushRefToStack(DataRef{Kind: StackIdx, Idx: 2}),
		PushRefToStack(DataRef{Kind: DataSecIdx, Idx: 9}),
		ToStr(),
		ToBool(),
		Pop(),
		PopFree(),
		StackTopToReg(0),
		ReadReg(1),
		Exit(0),
		Exit(-1),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, op := range allOps() {
		buf := Encode(nil, op)
		if len(buf)%2 != 0 {
			t.Fatalf("%s: encoded length %d is odd", op, len(buf))
		}
		if len(buf) != SerializedSize(op) {
			t.Fatalf("%s: encoded length %d != SerializedSize %d", op, len(buf), SerializedSize(op))
		}
		got, n, err := Decode(buf)
		if err != nil {
			t.Fatalf("%s: decode error: %v", op, err)
		}
		if n != len(buf) {
			t.Fatalf("%s: decode consumed %d bytes, want %d", op, n, len(buf))
		}
		if got != op {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, op)
		}
	}
}

func TestTagOnlySizeIsTwo(t *testing.T) {
	for _, op := range []Op{Exec(), StrCat(), ToStr(), ToBool(), Pop(), PopFree()} {
		if SerializedSize(op) != 2 {
			t.Fatalf("%s: expected tag-only size 2, got %d", op, SerializedSize(op))
		}
	}
}

func TestSequentialOffsets(t *testing.T) {
	ops := []Op{PushPrimitive(CopyValue{Kind: CopyInt, Int: 1}), Pop(), Exit(0)}
	var buf []byte
	offsets := make([]int, len(ops))
	for i, op := range ops {
		offsets[i] = len(buf)
		buf = Encode(buf, op)
	}

	for i, want := range ops {
		got, n, err := Decode(buf[offsets[i]:])
		if err != nil {
			t.Fatalf("decode at offset %d: %v", offsets[i], err)
		}
		if got != want {
			t.Fatalf("offset %d: got %+v, want %+v", offsets[i], got, want)
		}
		if offsets[i]+n > len(buf) {
			t.Fatalf("decode overran buffer")
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	full := Encode(nil, PushDataSecRef(5))
	if _, _, err := Decode(full[:3]); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if _, _, err := Decode(nil); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated on empty buffer, got %v", err)
	}
}

func TestDecodeUnknownDiscriminant(t *testing.T) {
	buf := []byte{0xff, 0xff}
	if _, _, err := Decode(buf); err != ErrUnknownOpcode {
		t.Fatalf("expected ErrUnknownOpcode, got %v", err)
	}
}

// Package serializer implements the on-disk ".levc" bytecode format of
// spec.md §6: a version tag, the instruction text, the data section, and
// debug information, so a compiled program can be run or disassembled
// without its source.
//
// Grounded on no single original_source file (the original leaves
// persistence unspecified beyond "a version tag is embedded"); the
// container shape otherwise follows the teacher's own compiled-artifact
// conventions (internal/bytecode's ByteCode/DebugInformation split) and
// SPEC_FULL.md §3's domain-stack entries for mr-tron/base58 and
// gkampitakis/go-snaps.
package serializer

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/mr-tron/base58"

	"github.com/knorrfg/leviscript/internal/bytecode"
	"github.com/knorrfg/leviscript/internal/value"
)

// magic tags the start of every .levc file so a truncated or unrelated
// file is rejected before the version check even runs.
var magic = [4]byte{'L', 'V', 'C', '1'}

// Header is the metadata written ahead of a program's text, data section,
// and debug information. Digest is the raw sha256 over those three
// sections, used to detect corruption or truncation on load; DigestBase58
// is the same bytes rendered for quick CLI display ("leviscript disasm
// --verify") without the reader having to re-encode them.
type Header struct {
	Version      bytecode.Version
	Digest       [sha256.Size]byte
	DigestBase58 string
}

// ErrBadMagic is returned when the input does not start with the .levc
// magic bytes.
var ErrBadMagic = fmt.Errorf("serializer: not a .levc file")

// VersionMismatchError reports that a .levc file was built by a
// different version than the one attempting to load it. Spec.md §6
// requires no cross-version compatibility: a mismatch is always an
// error, never a best-effort load.
type VersionMismatchError struct {
	Have, Want bytecode.Version
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("serializer: bytecode version mismatch: file is %s, this build is %s", e.Have, e.Want)
}

// DigestMismatchError reports that a .levc file's recomputed content
// digest does not match the one stored in its header, i.e. the file was
// truncated or corrupted after compilation.
type DigestMismatchError struct {
	Have, Want string
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("serializer: content digest mismatch: file claims %s, computed %s", e.Want, e.Have)
}

// gobPayload is the shape encoding/gob actually marshals: the data
// section and debug information are serialized together so a reader
// only has to make one gob.Decoder call. Every field of value.Comptime
// and bytecode.DebugInformation is already exported, so gob round-trips
// them with no wire-shape shims.
type gobPayload struct {
	Data  []value.Comptime
	Debug bytecode.DebugInformation
}

func encodePayload(data []value.Comptime, debug bytecode.DebugInformation) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobPayload{Data: data, Debug: debug}); err != nil {
		return nil, fmt.Errorf("serializer: encoding data/debug payload: %w", err)
	}
	return buf.Bytes(), nil
}

func decodePayload(b []byte) ([]value.Comptime, bytecode.DebugInformation, error) {
	var payload gobPayload
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&payload); err != nil {
		return nil, bytecode.DebugInformation{}, fmt.Errorf("serializer: decoding data/debug payload: %w", err)
	}
	return payload.Data, payload.Debug, nil
}

// Write encodes code and debug as a .levc file to w, stamping it with
// bytecode.CurrentVersion and a digest over the text and the encoded
// payload.
func Write(w io.Writer, code bytecode.ByteCode, debug bytecode.DebugInformation) error {
	payload, err := encodePayload(code.Data, debug)
	if err != nil {
		return err
	}

	digest := sha256.Sum256(append(append([]byte(nil), code.Text...), payload...))

	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := writeVersion(w, bytecode.CurrentVersion); err != nil {
		return err
	}
	if _, err := w.Write(digest[:]); err != nil {
		return err
	}
	if err := writeBase58(w, digest[:]); err != nil {
		return err
	}
	if err := writeBlock(w, code.Text); err != nil {
		return err
	}
	if err := writeBlock(w, payload); err != nil {
		return err
	}
	return nil
}

// Read decodes a .levc file previously written by Write. It rejects
// files stamped with any version other than bytecode.CurrentVersion and
// files whose recomputed digest does not match the stored one.
func Read(r io.Reader) (bytecode.ByteCode, bytecode.DebugInformation, Header, error) {
	var hdr Header

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, hdr, ErrBadMagic
	}
	if gotMagic != magic {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, hdr, ErrBadMagic
	}

	version, err := readVersion(r)
	if err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, hdr, err
	}
	hdr.Version = version
	if version != bytecode.CurrentVersion {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, hdr, &VersionMismatchError{Have: version, Want: bytecode.CurrentVersion}
	}

	if _, err := io.ReadFull(r, hdr.Digest[:]); err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, hdr, fmt.Errorf("serializer: reading digest: %w", err)
	}
	digestB58, err := readBase58(r)
	if err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, hdr, err
	}
	hdr.DigestBase58 = digestB58

	text, err := readBlock(r)
	if err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, hdr, fmt.Errorf("serializer: reading text: %w", err)
	}
	payload, err := readBlock(r)
	if err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, hdr, fmt.Errorf("serializer: reading payload: %w", err)
	}

	gotDigest := sha256.Sum256(append(append([]byte(nil), text...), payload...))
	gotB58 := base58.Encode(gotDigest[:])
	if gotB58 != hdr.DigestBase58 || gotDigest != hdr.Digest {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, hdr, &DigestMismatchError{Have: gotB58, Want: hdr.DigestBase58}
	}

	data, debug, err := decodePayload(payload)
	if err != nil {
		return bytecode.ByteCode{}, bytecode.DebugInformation{}, hdr, err
	}

	return bytecode.ByteCode{Text: text, Data: data}, debug, hdr, nil
}

func writeVersion(w io.Writer, v bytecode.Version) error {
	var buf [6]byte
	binary.BigEndian.PutUint16(buf[0:2], v.Major)
	binary.BigEndian.PutUint16(buf[2:4], v.Minor)
	binary.BigEndian.PutUint16(buf[4:6], v.Patch)
	_, err := w.Write(buf[:])
	return err
}

func readVersion(r io.Reader) (bytecode.Version, error) {
	var buf [6]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return bytecode.Version{}, fmt.Errorf("serializer: reading version: %w", err)
	}
	return bytecode.Version{
		Major: binary.BigEndian.Uint16(buf[0:2]),
		Minor: binary.BigEndian.Uint16(buf[2:4]),
		Patch: binary.BigEndian.Uint16(buf[4:6]),
	}, nil
}

func writeBase58(w io.Writer, raw []byte) error {
	return writeBlock(w, []byte(base58.Encode(raw)))
}

func readBase58(r io.Reader) (string, error) {
	b, err := readBlock(r)
	if err != nil {
		return "", fmt.Errorf("serializer: reading base58 digest: %w", err)
	}
	return string(b), nil
}

// writeBlock writes a uint32 length prefix followed by b, the framing
// used for every variable-length section of the file.
func writeBlock(w io.Writer, b []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBlock(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

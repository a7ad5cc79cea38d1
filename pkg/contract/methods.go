// Package contract inspects deployed contract code.
package contract

import (
	"bytes"
	"encoding/base64"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	wasmVersion = 1

	sectionExport = 7
	exportFunc    = 0
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

var (
	ErrNotWasm   = errors.New("contract code is not a WebAssembly module")
	ErrTruncated = errors.New("contract code is truncated")
)

// MethodNames returns the names of the functions a contract exports, in export order.
func MethodNames(codeBase64 string) ([]string, error) {
	code, err := base64.StdEncoding.DecodeString(codeBase64)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decode contract code")
	}
	return ExportedFunctions(code)
}

// ExportedFunctions walks the sections of a WebAssembly binary and collects function exports.
func ExportedFunctions(code []byte) ([]string, error) {
	if len(code) < 8 || !bytes.Equal(code[:4], wasmMagic) {
		return nil, ErrNotWasm
	}
	if version := uint32(code[4]) | uint32(code[5])<<8 | uint32(code[6])<<16 | uint32(code[7])<<24; version != wasmVersion {
		return nil, errors.Errorf("unsupported WebAssembly version %d", version)
	}

	r := &reader{buf: code, pos: 8}
	names := []string{}
	for !r.done() {
		id, err := r.byte()
		if err != nil {
			return nil, err
		}
		size, err := r.uleb()
		if err != nil {
			return nil, err
		}
		section, err := r.bytes(size)
		if err != nil {
			return nil, err
		}
		if id != sectionExport {
			continue
		}

		exports, err := readExports(&reader{buf: section})
		if err != nil {
			return nil, errors.Wrap(err, "invalid export section")
		}
		names = append(names, exports...)
	}
	return names, nil
}

func readExports(r *reader) ([]string, error) {
	count, err := r.uleb()
	if err != nil {
		return nil, err
	}

	var names []string
	for i := uint64(0); i < count; i++ {
		length, err := r.uleb()
		if err != nil {
			return nil, err
		}
		name, err := r.bytes(length)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(name) {
			return nil, errors.Errorf("export %d has an invalid name", i)
		}
		kind, err := r.byte()
		if err != nil {
			return nil, err
		}
		if _, err := r.uleb(); err != nil {
			return nil, err
		}
		if kind == exportFunc {
			names = append(names, string(name))
		}
	}
	return names, nil
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) done() bool {
	return r.pos >= len(r.buf)
}

func (r *reader) byte() (byte, error) {
	if r.done() {
		return 0, ErrTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) bytes(n uint64) ([]byte, error) {
	if n > uint64(len(r.buf)-r.pos) {
		return nil, ErrTruncated
	}
	out := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return out, nil
}

// uleb reads an unsigned LEB128 value of at most 32 bits.
func (r *reader) uleb() (uint64, error) {
	var value uint64
	for shift := uint(0); shift < 35; shift += 7 {
		b, err := r.byte()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, nil
		}
	}
	return 0, errors.New("LEB128 value overflows 32 bits")
}

// Package bytecode (de)serializes a compiled program to and from a
// versioned, gzip-compressed container file, so the CLI's compile step and
// its run/debug steps can be separate invocations.
package bytecode

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"

	"rvm/encoder"
)

// magic identifies an rvm bytecode container; format is "magic[4] || version[1] || gzip(gob(CompiledProgram))".
var magic = [4]byte{'R', 'V', 'M', 0}

// Version is the current container format version. Write always emits this
// version; Read rejects any other.
const Version byte = 1

// Write serializes compiled as a versioned, gzip-compressed container.
func Write(w io.Writer, compiled *encoder.CompiledProgram) error {
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("bytecode: writing magic: %w", err)
	}
	if _, err := w.Write([]byte{Version}); err != nil {
		return fmt.Errorf("bytecode: writing version: %w", err)
	}

	gz := gzip.NewWriter(w)
	if err := gob.NewEncoder(gz).Encode(compiled); err != nil {
		return fmt.Errorf("bytecode: encoding program: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("bytecode: flushing compressed output: %w", err)
	}
	return nil
}

// Marshal is a convenience wrapper around Write that returns the encoded
// bytes directly.
func Marshal(compiled *encoder.CompiledProgram) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, compiled); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read parses a container previously produced by Write.
func Read(r io.Reader) (*encoder.CompiledProgram, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("bytecode: reading header: %w", err)
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return nil, fmt.Errorf("bytecode: not an rvm bytecode file (bad magic)")
	}
	if header[4] != Version {
		return nil, fmt.Errorf("bytecode: unsupported container version %d (expected %d)", header[4], Version)
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("bytecode: opening compressed stream: %w", err)
	}
	defer gz.Close()

	var compiled encoder.CompiledProgram
	if err := gob.NewDecoder(gz).Decode(&compiled); err != nil {
		return nil, fmt.Errorf("bytecode: decoding program: %w", err)
	}
	return &compiled, nil
}

// Unmarshal is a convenience wrapper around Read over an in-memory buffer.
func Unmarshal(data []byte) (*encoder.CompiledProgram, error) {
	return Read(bytes.NewReader(data))
}

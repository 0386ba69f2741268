package spdx

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type compression int

const (
	cmpNone compression = iota
	cmpGzip
	cmpZstd
	cmpXz
)

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicXz   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

func detectCompression(b []byte) compression {
	switch {
	case bytes.HasPrefix(b, magicGzip):
		return cmpGzip
	case bytes.HasPrefix(b, magicZstd):
		return cmpZstd
	case bytes.HasPrefix(b, magicXz):
		return cmpXz
	}
	return cmpNone
}

// Decompress returns a reader over the uncompressed contents of r. Plain
// input is passed through.
//
// The returned function must be called to release decoder resources.
func decompress(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReader(r)
	b, err := br.Peek(len(magicXz))
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, nil, err
	}
	nop := func() {}
	switch detectCompression(b) {
	case cmpGzip:
		g, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("spdx: gzip: %w", err)
		}
		return g, func() { g.Close() }, nil
	case cmpZstd:
		z, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("spdx: zstd: %w", err)
		}
		return z, z.Close, nil
	case cmpXz:
		x, err := xz.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("spdx: xz: %w", err)
		}
		return x, nop, nil
	}
	return br, nop, nil
}

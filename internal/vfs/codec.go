package vfs

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec is a whole-file compression wrapper around a packfile.
type Codec int

const (
	CodecNone Codec = iota
	CodecZstd
	CodecLZ4
)

func (c Codec) String() string {
	switch c {
	case CodecZstd:
		return "zst"
	case CodecLZ4:
		return "lz4"
	}
	return "none"
}

// Ext returns the file suffix for c, including the dot.
func (c Codec) Ext() string {
	if c == CodecNone {
		return ""
	}
	return "." + c.String()
}

// ParseCodec parses "zst", "zstd", "lz4" or "none".
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CodecNone, nil
	case "zst", "zstd":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	}
	return CodecNone, fmt.Errorf("vfs: unknown codec %q", s)
}

// CodecOf picks the codec from a file name suffix.
func CodecOf(path string) Codec {
	p := strings.ToLower(path)
	switch {
	case strings.HasSuffix(p, ".zst"):
		return CodecZstd
	case strings.HasSuffix(p, ".lz4"):
		return CodecLZ4
	}
	return CodecNone
}

// Decompress unwraps data compressed with c.
func Decompress(data []byte, c Codec) ([]byte, error) {
	switch c {
	case CodecZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("vfs: zstd reader: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("vfs: zstd decode: %w", err)
		}
		return out, nil
	case CodecLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("vfs: lz4 decode: %w", err)
		}
		return out, nil
	}
	return data, nil
}

// Compress writes data to w compressed with c.
func Compress(w io.Writer, data []byte, c Codec) error {
	switch c {
	case CodecZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return fmt.Errorf("vfs: zstd writer: %w", err)
		}
		if _, err := enc.Write(data); err != nil {
			enc.Close()
			return fmt.Errorf("vfs: zstd encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("vfs: zstd encode: %w", err)
		}
		return nil
	case CodecLZ4:
		zw := lz4.NewWriter(w)
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("vfs: lz4 encode: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("vfs: lz4 encode: %w", err)
		}
		return nil
	}
	_, err := w.Write(data)
	return err
}

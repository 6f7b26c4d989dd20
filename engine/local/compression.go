package local

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects how document payloads are stored.
type CompressionType uint8

const (
	// CompressionNone stores payloads as given.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (CompressionType, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("local: unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPayloadSize))
	return dec
}

// Payloads shorter than this are never compressed.
const minCompressSize = 64

// maxPayloadSize bounds the uncompressed size a payload header may claim.
const maxPayloadSize = 1 << 30

// An LZ4 block never expands its input by more than this factor.
const lz4MaxRatio = 255

// compressPayload returns the stored form of data and the compression that
// was actually applied. Incompressible data is stored raw.
//
// Format of a compressed payload: [uncompressed size uvarint][block].
func compressPayload(data []byte, c CompressionType) ([]byte, CompressionType, error) {
	if c == CompressionNone || len(data) < minCompressSize {
		return data, CompressionNone, nil
	}

	var block []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			return data, CompressionNone, nil
		}
		block = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		block = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, 0, fmt.Errorf("local: unknown compression %d", c)
	}

	if float64(len(block)) > float64(len(data))*0.9 {
		return data, CompressionNone, nil
	}

	out := binary.AppendUvarint(make([]byte, 0, binary.MaxVarintLen32+len(block)), uint64(len(data)))
	return append(out, block...), c, nil
}

func decompressPayload(data []byte, c CompressionType) ([]byte, error) {
	if c == CompressionNone {
		return data, nil
	}
	size, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errors.New("local: corrupt payload header")
	}
	block := data[n:]
	if size > maxPayloadSize {
		return nil, fmt.Errorf("local: corrupt payload header: size %d", size)
	}

	switch c {
	case CompressionLZ4:
		if size > lz4MaxRatio*uint64(len(block)+1) {
			return nil, fmt.Errorf("local: corrupt payload header: size %d for %d byte block", size, len(block))
		}
		result := make([]byte, size)
		m, err := lz4.UncompressBlock(block, result)
		if err != nil {
			return nil, err
		}
		if uint64(m) != size {
			return nil, errors.New("local: decompressed size mismatch")
		}
		return result, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		decoded, err := dec.DecodeAll(block, make([]byte, 0, min(size, 8*uint64(len(block)+1))))
		if err != nil {
			return nil, err
		}
		if uint64(len(decoded)) != size {
			return nil, errors.New("local: decompressed size mismatch")
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("local: unknown compression %d", c)
	}
}

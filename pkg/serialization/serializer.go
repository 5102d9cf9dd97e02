// Package serialization moves array payloads and graph envelopes across the
// wire. A Codec picks the byte encoding (JSON or MessagePack); a Pipeline
// layers optional compression (gzip or zstd) and AES-GCM sealing on top of a
// codec. The compute server negotiates its pipeline from request headers and
// the CLI writes exported envelopes through the default pipeline.
// PRINCIPLES:
// - SRP: codecs encode bytes, the pipeline owns compression and sealing
// - One pipeline shape for every payload, whatever the transport
package serialization

import (
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec is a byte encoding for wire values.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// JSONCodec encodes values as JSON.
type JSONCodec struct{}

// NewJSONCodec returns the JSON codec.
func NewJSONCodec() Codec { return &JSONCodec{} }

func (c *JSONCodec) Encode(v any) ([]byte, error)    { return json.Marshal(v) }
func (c *JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }
func (c *JSONCodec) Name() string                    { return "json" }

// MsgPackCodec encodes values as MessagePack.
type MsgPackCodec struct{}

// NewMsgPackCodec returns the MessagePack codec.
func NewMsgPackCodec() Codec { return &MsgPackCodec{} }

func (c *MsgPackCodec) Encode(v any) ([]byte, error)    { return msgpack.Marshal(v) }
func (c *MsgPackCodec) Decode(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (c *MsgPackCodec) Name() string                    { return "msgpack" }

// Compression names a payload compression scheme.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// ParseCompression maps a Content-Encoding style token to a Compression.
// The empty string and "identity" mean no compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "identity", string(CompressionNone):
		return CompressionNone, nil
	case string(CompressionGzip):
		return CompressionGzip, nil
	case string(CompressionZstd):
		return CompressionZstd, nil
	}
	return CompressionNone, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
}

// Pipeline runs values through codec encoding, optional compression, and
// optional AES-GCM sealing, and back. A nil key disables sealing; otherwise
// the key must be a valid AES key length (16, 24, or 32 bytes).
type Pipeline struct {
	codec       Codec
	compression Compression
	key         []byte
}

// NewPipeline assembles a pipeline from its stages.
func NewPipeline(codec Codec, compression Compression, key []byte) *Pipeline {
	return &Pipeline{codec: codec, compression: compression, key: key}
}

// DefaultPipeline is the envelope wire format: MessagePack compressed with
// zstd, unsealed.
func DefaultPipeline() *Pipeline {
	return NewPipeline(NewMsgPackCodec(), CompressionZstd, nil)
}

// Codec returns the pipeline's byte encoding.
func (p *Pipeline) Codec() Codec { return p.codec }

// Marshal encodes v, then compresses and seals per the pipeline stages.
func (p *Pipeline) Marshal(v any) ([]byte, error) {
	data, err := p.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if data, err = compress(p.compression, data); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if len(p.key) > 0 {
		if data, err = seal(p.key, data); err != nil {
			return nil, fmt.Errorf("seal: %w", err)
		}
	}
	return data, nil
}

// Unmarshal reverses Marshal into v.
func (p *Pipeline) Unmarshal(data []byte, v any) error {
	var err error
	if len(p.key) > 0 {
		if data, err = unseal(p.key, data); err != nil {
			return fmt.Errorf("unseal: %w", err)
		}
	}
	if data, err = decompress(p.compression, data); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	if err = p.codec.Decode(data, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func compress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return data, nil
	}
}

func decompress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	default:
		return data, nil
	}
}

// seal encrypts data with AES-GCM, prefixing the random nonce.
func seal(key, data []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

func unseal(key, data []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, ErrShortCiphertext
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

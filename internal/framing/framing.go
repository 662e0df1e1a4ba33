// Package framing packs a byte stream into pairs of 12-bit cipher blocks.
//
// An encrypted stream is laid out as
//
//	[padding length: 1 byte][chunk: 3 bytes]*
//
// where every chunk holds two 12-bit blocks and the padding length (0, 1 or 2)
// counts the zero bytes appended to the plaintext to fill its last chunk.
package framing

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/AeonDave/sdes/internal/sdes"
)

const (
	// HeaderSize is the length of the padding-length prefix.
	HeaderSize = 1
	// ChunkSize is the length of one pair of 12-bit blocks.
	ChunkSize = 3
	// MaxPadding is the largest valid padding length.
	MaxPadding = ChunkSize - 1

	defaultBatchChunks = 4096
	// Batches smaller than this are not worth splitting across goroutines.
	minParallelChunks = 64
)

// BlockCipher transforms 12-bit blocks carried in the low bits of a uint16.
type BlockCipher interface {
	EncryptBlock(block uint16) uint16
	DecryptBlock(block uint16) uint16
}

// Codec encrypts and decrypts framed streams with one block cipher.
// A Codec holds no per-stream state and may be shared.
type Codec struct {
	cipher  BlockCipher
	workers int
	batch   int
	log     *logrus.Entry
}

// Option configures a Codec.
type Option func(*Codec)

// WithWorkers transforms the chunks of each batch on up to n goroutines.
// Output order never depends on n.
func WithWorkers(n int) Option {
	return func(c *Codec) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithBatchSize sets how many chunks are read, transformed and written at a time.
func WithBatchSize(chunks int) Option {
	return func(c *Codec) {
		if chunks > 0 {
			c.batch = chunks
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Codec) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a Codec using c for every block.
func New(c BlockCipher, opts ...Option) *Codec {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	codec := &Codec{
		cipher:  c,
		workers: 1,
		batch:   defaultBatchChunks,
		log:     logrus.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(codec)
	}
	return codec
}

// Padding returns how many filler bytes a plaintext of size bytes needs.
func Padding(size int64) int {
	return int((ChunkSize - size%ChunkSize) % ChunkSize)
}

// EncryptedSize returns the framed length of a plaintext of size bytes.
func EncryptedSize(size int64) int64 {
	return HeaderSize + size + int64(Padding(size))
}

// CheckEncryptedSize reports whether size is a valid framed stream length.
func CheckEncryptedSize(size int64) error {
	if size < HeaderSize || (size-HeaderSize)%ChunkSize != 0 {
		return fmt.Errorf("%w: input size %d is not 1 + 3k bytes", sdes.ErrFormat, size)
	}
	return nil
}

// Encrypt reads size plaintext bytes from src and writes the framed
// ciphertext to dst. It returns the number of bytes written.
func (c *Codec) Encrypt(dst io.Writer, src io.Reader, size int64) (int64, error) {
	if size < 0 {
		return 0, fmt.Errorf("%w: negative plaintext size %d", sdes.ErrInvalidArgument, size)
	}
	padding := Padding(size)

	written, err := writeAll(dst, []byte{byte(padding)})
	if err != nil {
		return written, err
	}

	buf := make([]byte, c.batch*ChunkSize)
	for remaining := size; remaining > 0; {
		n := int(min(remaining, int64(len(buf))))
		if _, err := io.ReadFull(src, buf[:n]); err != nil {
			return written, fmt.Errorf("%w: read plaintext: %w", sdes.ErrIO, err)
		}
		remaining -= int64(n)

		// Only the last batch can end mid-chunk.
		full := n
		if remaining == 0 {
			clear(buf[n : n+padding])
			full += padding
		}

		c.transform(buf[:full], c.cipher.EncryptBlock)
		m, err := writeAll(dst, buf[:full])
		written += m
		if err != nil {
			return written, err
		}
	}

	c.log.WithFields(logrus.Fields{
		"plaintext": size,
		"padding":   padding,
		"written":   written,
	}).Debug("encrypted stream")
	return written, nil
}

// Decrypt reads a framed stream of size bytes from src and writes the
// plaintext to dst, dropping the padding from the final chunk. It returns
// the number of plaintext bytes written.
func (c *Codec) Decrypt(dst io.Writer, src io.Reader, size int64) (int64, error) {
	if err := CheckEncryptedSize(size); err != nil {
		return 0, err
	}

	var header [HeaderSize]byte
	if _, err := io.ReadFull(src, header[:]); err != nil {
		return 0, readError("padding length", err)
	}
	padding := int(header[0])
	if padding > MaxPadding {
		return 0, fmt.Errorf("%w: padding length %d out of range 0-%d", sdes.ErrFormat, padding, MaxPadding)
	}

	var written int64
	buf := make([]byte, c.batch*ChunkSize)
	for remaining := size - HeaderSize; remaining > 0; {
		n := int(min(remaining, int64(len(buf))))
		if _, err := io.ReadFull(src, buf[:n]); err != nil {
			return written, readError("chunk", err)
		}
		remaining -= int64(n)

		c.transform(buf[:n], c.cipher.DecryptBlock)
		if remaining == 0 {
			n -= padding
		}
		m, err := writeAll(dst, buf[:n])
		written += m
		if err != nil {
			return written, err
		}
	}

	c.log.WithFields(logrus.Fields{
		"ciphertext": size,
		"padding":    padding,
		"written":    written,
	}).Debug("decrypted stream")
	return written, nil
}

// EncryptBytes frames and encrypts plaintext in memory.
func (c *Codec) EncryptBytes(plaintext []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(int(EncryptedSize(int64(len(plaintext)))))
	if _, err := c.Encrypt(&out, bytes.NewReader(plaintext), int64(len(plaintext))); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecryptBytes decrypts a framed ciphertext held in memory.
func (c *Codec) DecryptBytes(ciphertext []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(ciphertext))
	if _, err := c.Decrypt(&out, bytes.NewReader(ciphertext), int64(len(ciphertext))); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// transform applies fn to both blocks of every chunk in buf, in place.
// len(buf) must be a multiple of ChunkSize.
func (c *Codec) transform(buf []byte, fn func(uint16) uint16) {
	chunks := len(buf) / ChunkSize
	if c.workers <= 1 || chunks < minParallelChunks {
		transformChunks(buf, fn)
		return
	}

	per := (chunks + c.workers - 1) / c.workers
	var g errgroup.Group
	g.SetLimit(c.workers)
	for start := 0; start < chunks; start += per {
		part := buf[start*ChunkSize : min(start+per, chunks)*ChunkSize]
		g.Go(func() error {
			transformChunks(part, fn)
			return nil
		})
	}
	// Block transforms cannot fail.
	_ = g.Wait()
}

func transformChunks(buf []byte, fn func(uint16) uint16) {
	for i := 0; i+ChunkSize <= len(buf); i += ChunkSize {
		transformChunk(buf[i:i+ChunkSize], fn)
	}
}

// transformChunk treats p as the little-endian 24-bit value
// b0 | b1<<8 | b2<<16 whose high 12 bits are the left block and low 12 bits
// the right block.
func transformChunk(p []byte, fn func(uint16) uint16) {
	v := uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16
	left := fn(uint16(v>>12)) & 0xFFF
	right := fn(uint16(v&0xFFF)) & 0xFFF
	v = uint32(left)<<12 | uint32(right)
	p[0], p[1], p[2] = byte(v), byte(v>>8), byte(v>>16)
}

func writeAll(w io.Writer, p []byte) (int64, error) {
	n, err := w.Write(p)
	if err != nil {
		return int64(n), fmt.Errorf("%w: write: %w", sdes.ErrIO, err)
	}
	if n != len(p) {
		return int64(n), fmt.Errorf("%w: write: %w", sdes.ErrIO, io.ErrShortWrite)
	}
	return int64(n), nil
}

// readError classifies a failed read of a framed stream: running out of
// data is a format problem, anything else is an I/O failure.
func readError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", sdes.ErrFormat, what)
	}
	return fmt.Errorf("%w: read %s: %w", sdes.ErrIO, what, err)
}

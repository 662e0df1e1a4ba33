package framing

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rogpeppe/go-internal/renameio"
	"github.com/sirupsen/logrus"

	"github.com/AeonDave/sdes/internal/sdes"
)

// outputMode is the permission set on every file written by the codec.
const outputMode os.FileMode = 0o644

// streamFunc is the signature shared by Codec.Encrypt and Codec.Decrypt.
type streamFunc func(dst io.Writer, src io.Reader, size int64) (int64, error)

// EncryptFile encrypts inPath into outPath.
func (c *Codec) EncryptFile(outPath, inPath string) (int64, error) {
	return c.processFile(outPath, inPath, c.Encrypt)
}

// DecryptFile decrypts inPath into outPath.
func (c *Codec) DecryptFile(outPath, inPath string) (int64, error) {
	return c.processFile(outPath, inPath, c.Decrypt)
}

// processFile streams inPath through fn into outPath. The output is written
// to a temporary file and renamed into place only on success, so a failed
// run never leaves a truncated output behind.
func (c *Codec) processFile(outPath, inPath string, fn streamFunc) (int64, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("%w: could not open file %s: %w", sdes.ErrIO, inPath, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: could not stat file %s: %w", sdes.ErrIO, inPath, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s is not a regular file", sdes.ErrIO, inPath)
	}

	pr, pw := io.Pipe()
	type result struct {
		n   int64
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := fn(pw, bufio.NewReader(in), info.Size())
		pw.CloseWithError(err)
		done <- result{n, err}
	}()

	werr := renameio.WriteToFile(outPath, pr)
	// Unblocks the producer if the output could not be created.
	pr.Close()
	res := <-done

	if res.err != nil && !errors.Is(res.err, io.ErrClosedPipe) {
		return res.n, res.err
	}
	if werr != nil {
		return res.n, fmt.Errorf("%w: could not write file %s: %w", sdes.ErrIO, outPath, werr)
	}
	// renameio creates its temporary file with mode 0600.
	if err := os.Chmod(outPath, outputMode); err != nil {
		return res.n, fmt.Errorf("%w: could not write file %s: %w", sdes.ErrIO, outPath, err)
	}
	c.log.WithFields(logrus.Fields{
		"input":  inPath,
		"output": outPath,
		"bytes":  res.n,
	}).Debug("wrote file")
	return res.n, nil
}

package framing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/AeonDave/sdes/internal/sdes"
)

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	plainPath := filepath.Join(dir, "plain.txt")
	encPath := filepath.Join(dir, "plain.sdes")
	outPath := filepath.Join(dir, "out.txt")

	content := []byte("The quick brown fox jumps over the lazy dog.\n")
	qt.Assert(t, qt.IsNil(os.WriteFile(plainPath, content, 0o644)))

	codec := newTestCodec(t, 0x13B, 4)
	n, err := codec.EncryptFile(encPath, plainPath)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(n, EncryptedSize(int64(len(content)))))

	n, err = codec.DecryptFile(outPath, encPath)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(n, int64(len(content))))

	got, err := os.ReadFile(outPath)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(got), string(content)))

	for _, path := range []string{encPath, outPath} {
		info, err := os.Stat(path)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(info.Mode().Perm(), outputMode), qt.Commentf("%s", path))
	}
}

func TestDecryptFileHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	encPath := filepath.Join(dir, "empty.sdes")
	outPath := filepath.Join(dir, "out")
	qt.Assert(t, qt.IsNil(os.WriteFile(encPath, []byte{0x00}, 0o644)))

	codec := newTestCodec(t, 0x1C7, 2)
	n, err := codec.DecryptFile(outPath, encPath)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(n, int64(0)))

	info, err := os.Stat(outPath)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(info.Size(), int64(0)))
}

func TestDecryptFileBadSizeLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	encPath := filepath.Join(dir, "bad.sdes")
	outPath := filepath.Join(dir, "out")
	qt.Assert(t, qt.IsNil(os.WriteFile(encPath, []byte{0x00, 1, 2, 3, 4}, 0o644)))

	codec := newTestCodec(t, 0x1C7, 2)
	_, err := codec.DecryptFile(outPath, encPath)
	qt.Assert(t, qt.ErrorIs(err, sdes.ErrFormat))

	_, err = os.Stat(outPath)
	qt.Assert(t, qt.IsTrue(os.IsNotExist(err)))
}

func TestFileOpenErrors(t *testing.T) {
	dir := t.TempDir()
	codec := newTestCodec(t, 0x1C7, 2)

	_, err := codec.DecryptFile(filepath.Join(dir, "out"), filepath.Join(dir, "missing"))
	qt.Assert(t, qt.ErrorIs(err, sdes.ErrIO))
	qt.Assert(t, qt.ErrorMatches(err, `.*could not open file .*missing.*`))

	inPath := filepath.Join(dir, "in")
	qt.Assert(t, qt.IsNil(os.WriteFile(inPath, []byte("abc"), 0o644)))
	_, err = codec.EncryptFile(filepath.Join(dir, "no", "such", "dir", "out"), inPath)
	qt.Assert(t, qt.ErrorIs(err, sdes.ErrIO))

	_, err = codec.EncryptFile(filepath.Join(dir, "out"), dir)
	qt.Assert(t, qt.ErrorIs(err, sdes.ErrIO))
}

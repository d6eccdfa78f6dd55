// Package bgzip block-compresses a finished text artifact into the bgzf
// format tabix indexing requires.  A bgzf file is a series of complete gzip
// blocks (at most 64KB of payload each) ending in a 28-byte terminator
// block, so downstream readers can seek to any block boundary; see the
// SAM/BAM spec, https://samtools.github.io/hts-specs/SAMv1.pdf.
package bgzip

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bgzf"
)

// Compress writes a bgzf-compressed copy of srcPath to dstPath.  level is a
// flate compression level.  Compression is not attempted until the full
// source artifact exists, and a zero-byte source is an error: an empty
// compressed artifact would only mask an upstream filter failure.
func Compress(ctx context.Context, srcPath, dstPath string, level int) error {
	info, err := file.Stat(ctx, srcPath)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return errors.E("bgzip.Compress: refusing to compress empty input:", srcPath)
	}
	in, err := file.Open(ctx, srcPath)
	if err != nil {
		return err
	}
	defer in.Close(ctx) // nolint: errcheck
	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	w, err := bgzf.NewWriterLevel(out, level, runtime.GOMAXPROCS(0))
	if err != nil {
		out.Close() // nolint: errcheck
		return errors.E(err, "bgzip.Compress", dstPath)
	}
	if _, err := io.Copy(w, in.Reader(ctx)); err != nil {
		out.Close() // nolint: errcheck
		return errors.E(err, "bgzip.Compress", dstPath)
	}
	// Close flushes the final block and appends the bgzf EOF terminator.
	if err := w.Close(); err != nil {
		out.Close() // nolint: errcheck
		return errors.E(err, "bgzip.Compress", dstPath)
	}
	return out.Close()
}

// VerifyEOF reports an error if the file at path does not end with the bgzf
// EOF terminator, i.e. if it is truncated or not bgzf at all.
func VerifyEOF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() // nolint: errcheck
	ok, err := bgzf.HasEOF(f)
	if err != nil {
		return errors.E(err, "bgzip.VerifyEOF", path)
	}
	if !ok {
		return errors.E("bgzip.VerifyEOF: missing bgzf terminator:", path)
	}
	return nil
}

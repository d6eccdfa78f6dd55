// Package fetch retrieves the remote compressed annotation file and
// decompresses it to a local artifact in one pass; the compressed stream is
// never persisted.
package fetch

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Fetch GETs url, which must serve a gzip-compressed payload, and writes the
// decompressed payload to dst.  There are no retries: network failures,
// non-2xx responses, and corrupt payloads are all returned to the caller, and
// the remote is assumed immutable so a rerun is always safe.
func Fetch(ctx context.Context, url, dst string) error {
	return fetch(ctx, http.DefaultClient, url, dst)
}

func fetch(ctx context.Context, client *http.Client, url, dst string) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return errors.Wrapf(err, "fetch %s", url)
	}
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "fetch %s", url)
	}
	defer resp.Body.Close() // nolint: errcheck
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("fetch %s: %s", url, resp.Status)
	}
	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "fetch %s: not a gzip payload", url)
	}
	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "fetch: create %s", dst)
	}
	if _, err := io.Copy(out, gz); err != nil {
		out.Close() // nolint: errcheck
		return errors.Wrapf(err, "fetch %s: corrupt gzip payload", url)
	}
	if err := gz.Close(); err != nil {
		out.Close() // nolint: errcheck
		return errors.Wrapf(err, "fetch %s: corrupt gzip payload", url)
	}
	return out.Close()
}

package pipeline

import (
	"context"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Layout derives the four artifact paths of the annotation chain from one
// base name.  The raw artifact is an intermediate: it exists only between the
// fetch and filter stages.
type Layout struct {
	// Base is the local path the raw download decompresses to,
	// e.g. "E001_15_coreMarks_mnemonics.bed".
	Base string
}

// Raw returns the decompressed download path (transient).
func (l Layout) Raw() string { return l.Base }

// Filtered returns the path of the chromosome/label-filtered artifact.
func (l Layout) Filtered() string { return l.Base + "_filtered" }

// Compressed returns the path of the bgzf-compressed filtered artifact.
func (l Layout) Compressed() string { return l.Base + ".gz" }

// Index returns the path of the tabix index over Compressed.
func (l Layout) Index() string { return l.Base + ".gz.tbi" }

// Clean removes the filtered, compressed, and index artifacts.  The raw
// artifact is not touched; the pipeline reclaims it on its own.
func Clean(ctx context.Context, l Layout) error {
	for _, path := range []string{l.Filtered(), l.Compressed(), l.Index()} {
		err := os.Remove(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return errors.E(err, "clean", path)
		}
		log.Printf("clean: removed %s", path)
	}
	return nil
}

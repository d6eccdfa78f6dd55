package pipeline

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/chromstate/bed"
	"github.com/grailbio/chromstate/encoding/bgzip"
	"github.com/grailbio/chromstate/fetch"
	"github.com/grailbio/chromstate/tabix"
)

// Opts configures the annotation artifact chain.
type Opts struct {
	// URL of the remote gzip-compressed ChromHMM BED file.
	URL string
	// Chromosomes is the column-1 allowlist (whole-field matches only).
	Chromosomes []string
	// State is the exact ChromHMM mnemonic rows must carry in column 4.
	State string
	// Base is the local artifact base name; see Layout.
	Base string
	// BgzfLevel is the flate compression level for the bgzf artifact;
	// -1 selects the codec default.
	BgzfLevel int
}

// DefaultOpts prepares the Roadmap Epigenomics E001 15-state coreMarks
// segmentation, keeping enhancer segments on the first three chromosomes.
var DefaultOpts = Opts{
	URL:         "https://egg2.wustl.edu/roadmap/data/byFileType/chromhmmSegmentations/ChmmModels/coreMarks/jointModel/final/E001_15_coreMarks_mnemonics.bed.gz",
	Chromosomes: []string{"chr1", "chr2", "chr3"},
	State:       "7_Enh",
	Base:        "E001_15_coreMarks_mnemonics.bed",
	BgzfLevel:   -1,
}

// Stages returns the fixed four-stage chain fetch -> filter -> compress ->
// index for opts.  The raw download is an intermediate: it is regenerated
// only when the filter actually needs it and reclaimed as soon as the
// filtered artifact lands.
func Stages(opts Opts) []*Stage {
	layout := Layout{Base: opts.Base}
	return []*Stage{
		{
			Name:         "fetch",
			Output:       layout.Raw(),
			Intermediate: true,
			Run: func(ctx context.Context, tmp string) error {
				return fetch.Fetch(ctx, opts.URL, tmp)
			},
		},
		{
			Name:        "filter",
			Input:       layout.Raw(),
			Output:      layout.Filtered(),
			RemoveInput: true,
			Run: func(ctx context.Context, tmp string) error {
				kept, err := bed.Filter(ctx, layout.Raw(), tmp, bed.FilterOpts{
					Chromosomes: opts.Chromosomes,
					State:       opts.State,
				})
				if err != nil {
					return err
				}
				log.Printf("filter: kept %d rows", kept)
				return nil
			},
		},
		{
			Name:   "compress",
			Input:  layout.Filtered(),
			Output: layout.Compressed(),
			Run: func(ctx context.Context, tmp string) error {
				return bgzip.Compress(ctx, layout.Filtered(), tmp, opts.BgzfLevel)
			},
		},
		{
			Name:   "index",
			Input:  layout.Compressed(),
			Output: layout.Index(),
			Run: func(ctx context.Context, tmp string) error {
				return tabix.Build(layout.Compressed(), tmp)
			},
		},
	}
}

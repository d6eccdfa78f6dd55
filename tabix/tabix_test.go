package tabix_test

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/chromstate/bed"
	"github.com/grailbio/chromstate/encoding/bgzip"
	"github.com/grailbio/chromstate/tabix"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/stretchr/testify/require"
)

// buildIndexed writes content as a bgzf-compressed artifact plus its index
// and returns the two paths.
func buildIndexed(t *testing.T, tmpdir, content string) (bgzPath, tbiPath string) {
	ctx := vcontext.Background()
	src := filepath.Join(tmpdir, "filtered.bed")
	bgzPath = filepath.Join(tmpdir, "filtered.bed.gz")
	tbiPath = bgzPath + ".tbi"
	require.NoError(t, ioutil.WriteFile(src, []byte(content), 0644))
	require.NoError(t, bgzip.Compress(ctx, src, bgzPath, -1))
	require.NoError(t, tabix.Build(bgzPath, tbiPath))
	return bgzPath, tbiPath
}

func collect(t *testing.T, bgzPath, tbiPath, region string) []string {
	r, err := tabix.ParseRegion(region)
	require.NoError(t, err)
	var lines []string
	err = tabix.Query(bgzPath, tbiPath, r, func(rec bed.Record, line []byte) error {
		lines = append(lines, string(line))
		return nil
	})
	require.NoError(t, err)
	return lines
}

func TestBuildAndQuery(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	content := "chr1\t100\t200\t7_Enh\n" +
		"chr1\t200\t400\t7_Enh\n" +
		"chr1\t1000\t1200\t7_Enh\n" +
		"chr2\t100\t300\t7_Enh\n" +
		"chr3\t50\t60\t7_Enh\n"
	bgz, tbi := buildIndexed(t, tmpdir, content)

	// 1-based inclusive query coordinates.
	assert.EQ(t, collect(t, bgz, tbi, "chr1:150-250"),
		[]string{"chr1\t100\t200\t7_Enh", "chr1\t200\t400\t7_Enh"})
	assert.EQ(t, collect(t, bgz, tbi, "chr1:401-999"), []string(nil))
	assert.EQ(t, collect(t, bgz, tbi, "chr1:1001"),
		[]string{"chr1\t1000\t1200\t7_Enh"})
	assert.EQ(t, collect(t, bgz, tbi, "chr2"),
		[]string{"chr2\t100\t300\t7_Enh"})
	assert.EQ(t, collect(t, bgz, tbi, "chr3:1-50"), []string(nil))
	assert.EQ(t, collect(t, bgz, tbi, "chr3:60-100"),
		[]string{"chr3\t50\t60\t7_Enh"})
	// Unknown chromosome: empty result, not an error.
	assert.EQ(t, collect(t, bgz, tbi, "chrX:1-100"), []string(nil))
}

// TestQueryPerRecord pins down per-record chunk resolution: querying the
// interval of one record must return that record alone, never a neighbor's
// bytes, for every record on the chromosome.
func TestQueryPerRecord(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	records := []string{
		"chr1\t10\t20\t7_Enh",
		"chr1\t100\t200\t7_Enh",
		"chr1\t300\t400\t7_Enh",
	}
	bgz, tbi := buildIndexed(t, tmpdir, strings.Join(records, "\n")+"\n")

	for _, test := range []struct {
		region string
		want   string
	}{
		{"chr1:11-20", records[0]},
		{"chr1:101-200", records[1]},
		{"chr1:301-400", records[2]},
	} {
		assert.EQ(t, collect(t, bgz, tbi, test.region), []string{test.want})
	}

	// A query past the last record on the chromosome is empty, not an error.
	assert.EQ(t, collect(t, bgz, tbi, "chr1:100000-200000"), []string(nil))
}

func TestBuildManyBlocks(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	// Enough rows that the compressed artifact spans several bgzf blocks and
	// chunk offsets land mid-block.
	var sb strings.Builder
	for i := 0; i < 50000; i++ {
		fmt.Fprintf(&sb, "chr1\t%d\t%d\t7_Enh\n", i*100, i*100+80)
	}
	bgz, tbi := buildIndexed(t, tmpdir, sb.String())

	got := collect(t, bgz, tbi, "chr1:3000001-3000200")
	assert.EQ(t, got, []string{
		"chr1\t3000000\t3000080\t7_Enh",
		"chr1\t3000100\t3000180\t7_Enh",
	})
}

func TestBuildUnsorted(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	for _, content := range []string{
		// Start coordinates descending within a chromosome.
		"chr1\t500\t600\t7_Enh\nchr1\t100\t200\t7_Enh\n",
		// Chromosome group split in two.
		"chr1\t100\t200\t7_Enh\nchr2\t100\t200\t7_Enh\nchr1\t300\t400\t7_Enh\n",
	} {
		src := filepath.Join(tmpdir, "filtered.bed")
		bgz := filepath.Join(tmpdir, "filtered.bed.gz")
		require.NoError(t, ioutil.WriteFile(src, []byte(content), 0644))
		require.NoError(t, bgzip.Compress(ctx, src, bgz, -1))
		assert.NotNil(t, tabix.Build(bgz, bgz+".tbi"))
	}
}

func TestBuildTruncatedInput(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	src := filepath.Join(tmpdir, "filtered.bed")
	bgz := filepath.Join(tmpdir, "filtered.bed.gz")
	require.NoError(t, ioutil.WriteFile(src, []byte("chr1\t100\t200\t7_Enh\n"), 0644))
	require.NoError(t, bgzip.Compress(ctx, src, bgz, -1))
	compressed, err := ioutil.ReadFile(bgz)
	require.NoError(t, err)
	require.NoError(t, ioutil.WriteFile(bgz, compressed[:len(compressed)-28], 0644))
	assert.NotNil(t, tabix.Build(bgz, bgz+".tbi"))
}

func TestParseRegion(t *testing.T) {
	for _, test := range []struct {
		in        string
		wantChrom string
		wantBeg   int
		wantEnd   int
	}{
		{"chr1", "chr1", 0, 1<<29 - 1},
		{"chr1:100", "chr1", 99, 100},
		{"chr1:100-200", "chr1", 99, 200},
		{"chr10:1-1", "chr10", 0, 1},
	} {
		r, err := tabix.ParseRegion(test.in)
		assert.NoError(t, err)
		assert.EQ(t, r.RefName(), test.wantChrom)
		assert.EQ(t, r.Start(), test.wantBeg)
		assert.EQ(t, r.End(), test.wantEnd)
	}
	for _, in := range []string{"", ":100", "chr1:", "chr1:0", "chr1:200-100", "chr1:x-y"} {
		_, err := tabix.ParseRegion(in)
		assert.NotNil(t, err)
	}
}

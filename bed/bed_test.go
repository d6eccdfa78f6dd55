package bed

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestParseLine(t *testing.T) {
	rec, err := ParseLine([]byte("chr1\t100\t200\t7_Enh"), 1)
	expect.NoError(t, err)
	expect.EQ(t, rec, Record{Chrom: "chr1", ChromStart: 100, ChromEnd: 200, State: "7_Enh"})
	expect.EQ(t, rec.RefName(), "chr1")
	expect.EQ(t, rec.Start(), 100)
	expect.EQ(t, rec.End(), 200)

	// Extra columns ride along without affecting the parse.
	rec, err = ParseLine([]byte("chr10\t0\t5\t15_Quies\t0\t.\t"), 2)
	expect.NoError(t, err)
	expect.EQ(t, rec, Record{Chrom: "chr10", ChromStart: 0, ChromEnd: 5, State: "15_Quies"})

	for _, line := range []string{
		"",
		"chr1",
		"chr1\t100\t200",
		"chr1\tx\t200\t7_Enh",
		"chr1\t100\ty\t7_Enh",
		"chr1\t-5\t200\t7_Enh",
		"chr1\t200\t100\t7_Enh",
	} {
		_, err := ParseLine([]byte(line), 1)
		expect.NotNil(t, err)
	}
}

func TestGetTokens(t *testing.T) {
	var tokens [4][]byte
	expect.EQ(t, getTokens(tokens[:], []byte("chr1\t1\t2\t7_Enh\tmore")), 4)
	expect.EQ(t, string(tokens[0]), "chr1")
	expect.EQ(t, string(tokens[3]), "7_Enh")
	expect.EQ(t, getTokens(tokens[:], []byte("  chr2  3 ")), 2)
	expect.EQ(t, string(tokens[1]), "3")
	expect.EQ(t, getTokens(tokens[:], []byte("   ")), 0)
}

// Copyright 2019 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bed models ChromHMM chromatin-state BED rows and implements the
// chromosome/state filter of the annotation pipeline.  Only the first four
// columns are interpreted; the remaining columns ride along untouched.
package bed

import (
	"fmt"
	"strconv"

	gunsafe "github.com/grailbio/base/unsafe"
)

// Record is one chromatin-state row.  Coordinates are zero-based half-open,
// as in the BED format itself.
type Record struct {
	// Chrom is the chromosome name, e.g. "chr1".
	Chrom string
	// ChromStart and ChromEnd bound the segment.
	ChromStart int
	ChromEnd   int
	// State is the ChromHMM state mnemonic in column 4, e.g. "7_Enh".
	State string
}

// RefName implements tabix.Record.
func (r Record) RefName() string { return r.Chrom }

// Start implements tabix.Record.
func (r Record) Start() int { return r.ChromStart }

// End implements tabix.Record.
func (r Record) End() int { return r.ChromEnd }

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.  These simple loops beat the standard library
// string-split functions for the handful of leading columns we care about.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// ParseLine parses the first four columns of a BED line.  lineIdx is
// 1-based and only used in error messages.  The returned Record does not
// alias curLine.
func ParseLine(curLine []byte, lineIdx int) (Record, error) {
	var tokens [4][]byte
	nToken := getTokens(tokens[:], curLine)
	if nToken != 4 {
		return Record{}, fmt.Errorf("bed.ParseLine: line %d has fewer tokens than expected", lineIdx)
	}
	start, err := strconv.Atoi(gunsafe.BytesToString(tokens[1]))
	if err != nil {
		return Record{}, fmt.Errorf("bed.ParseLine: bad start coordinate on line %d: %v", lineIdx, err)
	}
	if start < 0 {
		return Record{}, fmt.Errorf("bed.ParseLine: negative start coordinate %s on line %d", tokens[1], lineIdx)
	}
	end, err := strconv.Atoi(gunsafe.BytesToString(tokens[2]))
	if err != nil {
		return Record{}, fmt.Errorf("bed.ParseLine: bad end coordinate on line %d: %v", lineIdx, err)
	}
	if end < start {
		return Record{}, fmt.Errorf("bed.ParseLine: invalid coordinate pair on line %d", lineIdx)
	}
	// Copies of the token bytes, since curLine's buffer will be overwritten
	// by the next scan.
	return Record{
		Chrom:      string(tokens[0]),
		ChromStart: start,
		ChromEnd:   end,
		State:      string(tokens[3]),
	}, nil
}

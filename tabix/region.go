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

package tabix

import (
	"fmt"
	"strconv"
	"strings"
)

// maxCoord is the largest coordinate the tabix binning scheme can address.
const maxCoord = 1<<29 - 1

// Region is a query interval.  Internally zero-based half-open, like BED.
type Region struct {
	chrom    string
	beg, end int
}

// RefName implements the hts tabix Record interface.
func (r Region) RefName() string { return r.chrom }

// Start implements the hts tabix Record interface.
func (r Region) Start() int { return r.beg }

// End implements the hts tabix Record interface.
func (r Region) End() int { return r.end }

// Overlaps reports whether the interval [beg, end) overlaps the region.
func (r Region) Overlaps(beg, end int) bool {
	return beg < r.end && end > r.beg
}

// ParseRegion parses "<chrom>", "<chrom>:<pos>", or "<chrom>:<first>-<last>"
// with 1-based inclusive coordinates, the same syntax samtools and tabix
// accept on their command lines.
func ParseRegion(s string) (Region, error) {
	colon := strings.IndexByte(s, ':')
	if colon == -1 {
		if s == "" {
			return Region{}, fmt.Errorf("tabix.ParseRegion: empty region")
		}
		return Region{chrom: s, beg: 0, end: maxCoord}, nil
	}
	chrom := s[:colon]
	if chrom == "" {
		return Region{}, fmt.Errorf("tabix.ParseRegion: missing chromosome in %q", s)
	}
	span := s[colon+1:]
	dash := strings.IndexByte(span, '-')
	if dash == -1 {
		pos, err := strconv.Atoi(span)
		if err != nil || pos < 1 {
			return Region{}, fmt.Errorf("tabix.ParseRegion: bad position in %q", s)
		}
		return Region{chrom: chrom, beg: pos - 1, end: pos}, nil
	}
	first, err := strconv.Atoi(span[:dash])
	if err != nil || first < 1 {
		return Region{}, fmt.Errorf("tabix.ParseRegion: bad interval start in %q", s)
	}
	last, err := strconv.Atoi(span[dash+1:])
	if err != nil || last < first {
		return Region{}, fmt.Errorf("tabix.ParseRegion: bad interval end in %q", s)
	}
	return Region{chrom: chrom, beg: first - 1, end: last}, nil
}

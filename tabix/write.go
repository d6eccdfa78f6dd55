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
	"encoding/binary"
	"io"
	"sort"

	"github.com/grailbio/hts/bgzf"
)

// tbiMagic is the .tbi index magic; see the tabix specification,
// https://samtools.github.io/hts-specs/tabix.pdf.
var tbiMagic = [4]byte{'T', 'B', 'I', 0x1}

// linearShift is the 16kb window width of the tabix linear index.
const linearShift = 14

// reg2bin returns the smallest bin of the 6-level binning scheme that
// contains the zero-based half-open interval [beg, end).
func reg2bin(beg, end int) uint32 {
	if end <= beg {
		end = beg + 1
	}
	end--
	switch {
	case beg>>14 == end>>14:
		return uint32(((1<<15)-1)/7 + beg>>14)
	case beg>>17 == end>>17:
		return uint32(((1<<12)-1)/7 + beg>>17)
	case beg>>20 == end>>20:
		return uint32(((1<<9)-1)/7 + beg>>20)
	case beg>>23 == end>>23:
		return uint32(((1<<6)-1)/7 + beg>>23)
	case beg>>26 == end>>26:
		return uint32(((1<<3)-1)/7 + beg>>26)
	}
	return 0
}

// toVOffset packs a bgzf.Offset into the on-disk uint64 virtual offset.
func toVOffset(o bgzf.Offset) uint64 {
	return uint64(o.File)<<16 | uint64(o.Block)
}

// refIndex accumulates the binning and linear indexes of one reference.
// Records must be added in coordinate order.
type refIndex struct {
	name string
	bins map[uint32][]bgzf.Chunk
	ioff []uint64
}

func newRefIndex(name string) *refIndex {
	return &refIndex{name: name, bins: make(map[uint32][]bgzf.Chunk)}
}

func (r *refIndex) add(beg, end int, c bgzf.Chunk) {
	bin := reg2bin(beg, end)
	r.bins[bin] = append(r.bins[bin], c)
	if end <= beg {
		end = beg + 1
	}
	// The linear index records, per 16kb window, the lowest virtual offset
	// of any record overlapping the window.
	v := toVOffset(c.Begin)
	for w := beg >> linearShift; w <= (end-1)>>linearShift; w++ {
		for len(r.ioff) <= w {
			r.ioff = append(r.ioff, 0)
		}
		if r.ioff[w] == 0 || v < r.ioff[w] {
			r.ioff[w] = v
		}
	}
}

// writeTabix encodes refs as a bgzf-compressed .tbi index with the standard
// BED preset (name column 1, zero-based begin column 2, end column 3, '#'
// comments) to w.
func writeTabix(w io.Writer, refs []*refIndex) (err error) {
	bw := bgzf.NewWriter(w, 1)
	write := func(v interface{}) {
		if err == nil {
			err = binary.Write(bw, binary.LittleEndian, v)
		}
	}
	write(tbiMagic)
	write(int32(len(refs)))
	write(int32(0x10000)) // generic format, zero-based half-open coordinates
	write(int32(1))       // name column
	write(int32(2))       // begin column
	write(int32(3))       // end column
	write(int32('#'))
	write(int32(0)) // no header lines to skip
	var nameLen int32
	for _, ref := range refs {
		nameLen += int32(len(ref.name)) + 1
	}
	write(nameLen)
	for _, ref := range refs {
		write([]byte(ref.name))
		write(byte(0))
	}
	for _, ref := range refs {
		binIDs := make([]uint32, 0, len(ref.bins))
		for id := range ref.bins {
			binIDs = append(binIDs, id)
		}
		sort.Slice(binIDs, func(i, j int) bool { return binIDs[i] < binIDs[j] })
		write(int32(len(binIDs)))
		for _, id := range binIDs {
			chunks := ref.bins[id]
			write(id)
			write(int32(len(chunks)))
			for _, c := range chunks {
				write(toVOffset(c.Begin))
				write(toVOffset(c.End))
			}
		}
		write(int32(len(ref.ioff)))
		for _, v := range ref.ioff {
			write(v)
		}
	}
	if err != nil {
		return err
	}
	return bw.Close()
}

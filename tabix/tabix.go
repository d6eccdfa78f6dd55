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

// Package tabix builds and queries tabix (.tbi) indexes over bgzf-compressed,
// coordinate-sorted BED artifacts.  The index maps genomic intervals to
// virtual-offset chunks of the compressed file, so consumers can answer
// range queries without a full scan.
package tabix

import (
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/chromstate/bed"
	"github.com/grailbio/chromstate/encoding/bgzip"
	"github.com/grailbio/hts/bgzf"
	"v.io/x/lib/vlog"
)

// scanLines reads the bgzf stream one line at a time and calls visit with
// each non-blank line and the virtual-offset chunk it occupies.  Reads are
// byte-sized so that every Reader.LastChunk() result is exact: a one-byte
// read can never span a block boundary, and its chunk Begin/End are the
// virtual offsets immediately before and after that byte.
func scanLines(r *bgzf.Reader, visit func(line []byte, c bgzf.Chunk) error) error {
	var (
		buf   [1]byte
		line  []byte
		begin bgzf.Offset
		open  bool
	)
	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			c := r.LastChunk()
			if !open {
				begin = c.Begin
				open = true
			}
			if buf[0] == '\n' {
				if len(line) > 0 {
					if visitErr := visit(line, bgzf.Chunk{Begin: begin, End: c.End}); visitErr != nil {
						return visitErr
					}
				}
				line = line[:0]
				open = false
			} else {
				line = append(line, buf[0])
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	if open && len(line) > 0 {
		return visit(line, bgzf.Chunk{Begin: begin, End: r.LastChunk().End})
	}
	return nil
}

// Build writes a tabix index for the bgzf-compressed BED file at bgzPath to
// dstPath.  The input must be grouped by chromosome with non-decreasing
// start coordinates inside each group; Build fails on unsorted input rather
// than re-sorting, and it refuses inputs without the bgzf terminator so a
// truncated compressed artifact is caught here rather than by a consumer.
func Build(bgzPath, dstPath string) error {
	if err := bgzip.VerifyEOF(bgzPath); err != nil {
		return err
	}
	in, err := os.Open(bgzPath)
	if err != nil {
		return err
	}
	defer in.Close() // nolint: errcheck
	r, err := bgzf.NewReader(in, 0)
	if err != nil {
		return errors.E(err, "tabix.Build", bgzPath)
	}
	defer r.Close() // nolint: errcheck

	var (
		refs      []*refIndex
		cur       *refIndex
		seen      = make(map[string]bool)
		lineIdx   int
		prevStart int
		nRecords  int
	)
	err = scanLines(r, func(line []byte, c bgzf.Chunk) error {
		lineIdx++
		rec, parseErr := bed.ParseLine(line, lineIdx)
		if parseErr != nil {
			return parseErr
		}
		if cur == nil || rec.Chrom != cur.name {
			if seen[rec.Chrom] {
				return fmt.Errorf("tabix.Build: unsorted input (split chromosome %s) at line %d", rec.Chrom, lineIdx)
			}
			seen[rec.Chrom] = true
			if cur != nil {
				vlog.VI(1).Infof("tabix.Build: %s done after %d records", cur.name, nRecords)
			}
			cur = newRefIndex(rec.Chrom)
			refs = append(refs, cur)
			prevStart = 0
		} else if rec.ChromStart < prevStart {
			return fmt.Errorf("tabix.Build: unsorted input (%s:%d after %s:%d) at line %d",
				rec.Chrom, rec.ChromStart, rec.Chrom, prevStart, lineIdx)
		}
		prevStart = rec.ChromStart
		nRecords++
		cur.add(rec.ChromStart, rec.ChromEnd, c)
		return nil
	})
	if err != nil {
		return err
	}
	if nRecords == 0 {
		return errors.E("tabix.Build: no records in", bgzPath)
	}
	vlog.VI(1).Infof("tabix.Build: indexed %d records from %s", nRecords, bgzPath)

	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	if err := writeTabix(out, refs); err != nil {
		out.Close() // nolint: errcheck
		return errors.E(err, "tabix.Build: write", dstPath)
	}
	return out.Close()
}

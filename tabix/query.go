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
	"bufio"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/chromstate/bed"
	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/hts/bgzf/index"
	htstabix "github.com/grailbio/hts/tabix"
)

// readIndex reads the bgzf-compressed .tbi index at tbiPath.
func readIndex(tbiPath string) (*htstabix.Index, error) {
	tbiFile, err := os.Open(tbiPath)
	if err != nil {
		return nil, err
	}
	defer tbiFile.Close() // nolint: errcheck
	r, err := bgzf.NewReader(tbiFile, 0)
	if err != nil {
		return nil, errors.E(err, "tabix: read index", tbiPath)
	}
	defer r.Close() // nolint: errcheck
	idx, err := htstabix.ReadFrom(r)
	if err != nil {
		return nil, errors.E(err, "tabix: read index", tbiPath)
	}
	return idx, nil
}

// Query streams every record of the indexed artifact overlapping region to
// visit, in file order.  bgzPath and tbiPath are the compressed artifact and
// its companion index; visit receives the parsed record and the original
// line bytes, which it must not retain.
func Query(bgzPath, tbiPath string, region Region, visit func(rec bed.Record, line []byte) error) error {
	idx, err := readIndex(tbiPath)
	if err != nil {
		return err
	}

	chunks, err := idx.Chunks(region.RefName(), region.Start(), region.End())
	switch err {
	case nil:
	case index.ErrNoReference:
		// The artifact holds no records for this chromosome; an empty
		// result, not a failure.
		return nil
	case index.ErrInvalid:
		// The query starts past the last indexed interval of the
		// chromosome, so nothing can overlap it.
		return nil
	default:
		return errors.E(err, "tabix.Query", tbiPath)
	}
	if len(chunks) == 0 {
		return nil
	}

	in, err := os.Open(bgzPath)
	if err != nil {
		return err
	}
	defer in.Close() // nolint: errcheck
	r, err := bgzf.NewReader(in, 0)
	if err != nil {
		return errors.E(err, "tabix.Query", bgzPath)
	}
	defer r.Close() // nolint: errcheck
	cr, err := index.NewChunkReader(r, chunks)
	if err != nil {
		return errors.E(err, "tabix.Query", bgzPath)
	}

	// Chunk boundaries are record boundaries by construction, so scanning
	// the concatenated chunks yields whole lines.
	scanner := bufio.NewScanner(cr)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		rec, parseErr := bed.ParseLine(line, lineIdx)
		if parseErr != nil {
			return parseErr
		}
		if rec.Chrom != region.RefName() || !region.Overlaps(rec.ChromStart, rec.ChromEnd) {
			continue
		}
		if err := visit(rec, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.E(err, "tabix.Query", bgzPath)
	}
	return nil
}

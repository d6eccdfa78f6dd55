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

package bed

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// FilterOpts selects the rows the filter keeps.
type FilterOpts struct {
	// Chromosomes is the allowlist for column 1.  Matching is whole-field
	// equality: "chr1" in the allowlist does not admit "chr10".
	Chromosomes []string
	// State is the exact ChromHMM mnemonic required in column 4.
	State string
}

// Filter copies the rows of the BED file at srcPath whose chromosome is in
// the allowlist and whose state equals opts.State to dstPath, preserving row
// order and the exact bytes of every surviving line.  It returns the number
// of rows kept.
//
// A missing or zero-row source is an error rather than an empty output, so a
// failed upstream fetch cannot masquerade as a successfully filtered
// artifact.
func Filter(ctx context.Context, srcPath, dstPath string, opts FilterOpts) (int, error) {
	allow := make(map[string]bool, len(opts.Chromosomes))
	for _, chrom := range opts.Chromosomes {
		allow[chrom] = true
	}

	in, err := file.Open(ctx, srcPath)
	if err != nil {
		return 0, err
	}
	defer in.Close(ctx) // nolint: errcheck
	out, err := os.Create(dstPath)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(out)

	scanner := bufio.NewScanner(in.Reader(ctx))
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	lineIdx := 0
	kept := 0
	var tokens [4][]byte
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 {
			// Blank line; not a row.
			continue
		}
		if nToken != 4 {
			out.Close() // nolint: errcheck
			return 0, errors.E(fmt.Sprintf("bed.Filter: line %d has fewer tokens than expected", lineIdx), srcPath)
		}
		if !allow[string(tokens[0])] || string(tokens[3]) != opts.State {
			continue
		}
		if _, err = w.Write(curLine); err != nil {
			out.Close() // nolint: errcheck
			return 0, err
		}
		if err = w.WriteByte('\n'); err != nil {
			out.Close() // nolint: errcheck
			return 0, err
		}
		kept++
	}
	if err = scanner.Err(); err != nil {
		out.Close() // nolint: errcheck
		return 0, errors.E(err, "bed.Filter: read", srcPath)
	}
	if lineIdx == 0 {
		out.Close() // nolint: errcheck
		return 0, errors.E("bed.Filter: empty input:", srcPath)
	}
	if err = w.Flush(); err != nil {
		out.Close() // nolint: errcheck
		return 0, err
	}
	return kept, out.Close()
}

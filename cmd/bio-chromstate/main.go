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
package main

// See doc.go for documentation

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/chromstate/bed"
	"github.com/grailbio/chromstate/pipeline"
	"github.com/grailbio/chromstate/tabix"
)

var (
	url         = flag.String("url", pipeline.DefaultOpts.URL, "Remote gzip-compressed ChromHMM BED file")
	chromosomes = flag.String("chromosomes", strings.Join(pipeline.DefaultOpts.Chromosomes, ","), "Comma-separated chromosome allowlist; matching is whole-field, so chr1 does not admit chr10")
	label       = flag.String("label", pipeline.DefaultOpts.State, "ChromHMM state mnemonic rows must carry in column 4")
	out         = flag.String("out", pipeline.DefaultOpts.Base, "Artifact base name; the pipeline writes <out>_filtered, <out>.gz and <out>.gz.tbi")
	bgzfLevel   = flag.Int("bgzf-level", pipeline.DefaultOpts.BgzfLevel, "bgzf compression level; -1 = codec default")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] [build|clean|query <region>]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	opts := pipeline.Opts{
		URL:         *url,
		Chromosomes: strings.Split(*chromosomes, ","),
		State:       *label,
		Base:        *out,
		BgzfLevel:   *bgzfLevel,
	}

	target := "build"
	args := flag.Args()
	if len(args) > 0 {
		target = args[0]
	}
	ctx := vcontext.Background()
	layout := pipeline.Layout{Base: opts.Base}
	switch target {
	case "build":
		if len(args) > 1 {
			log.Fatalf("Too many positional arguments for build: '%s'", strings.Join(args[1:], " "))
		}
		if err := pipeline.Run(ctx, pipeline.Stages(opts)); err != nil {
			log.Fatalf("build: %v", err)
		}
	case "clean":
		if len(args) > 1 {
			log.Fatalf("Too many positional arguments for clean: '%s'", strings.Join(args[1:], " "))
		}
		if err := pipeline.Clean(ctx, layout); err != nil {
			log.Fatalf("clean: %v", err)
		}
	case "query":
		if len(args) != 2 {
			log.Fatalf("query requires exactly one region argument, e.g. chr1:100000-200000")
		}
		region, err := tabix.ParseRegion(args[1])
		if err != nil {
			log.Fatalf("query: %v", err)
		}
		err = tabix.Query(layout.Compressed(), layout.Index(), region,
			func(rec bed.Record, line []byte) error {
				_, werr := fmt.Fprintf(os.Stdout, "%s\n", line)
				return werr
			})
		if err != nil {
			log.Fatalf("query: %v", err)
		}
	default:
		log.Fatalf("Unknown target '%s'; expected build, clean, or query", target)
	}
}

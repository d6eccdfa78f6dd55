/*Command bio-chromstate prepares a Roadmap Epigenomics ChromHMM
  chromatin-state BED dataset for coordinate-range queries.  It downloads
  and decompresses the remote segmentation, keeps the rows matching a
  chromosome allowlist and a state mnemonic, bgzf-compresses the result,
  and writes a tabix index next to it.  Stages rerun only when their
  output is missing or older than its input, so invoking the command
  again after a complete run does nothing.

  Usage:
    bio-chromstate [OPTIONS] [build]
    bio-chromstate [OPTIONS] query chr1:100000-200000
    bio-chromstate [OPTIONS] clean
*/
package main

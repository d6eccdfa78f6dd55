// Package pipeline runs a linear chain of artifact-producing stages with
// make-style staleness resolution: a stage reruns iff its output is missing
// or strictly older (by mtime) than its input, or an earlier stage reran
// during the same invocation.
//
// The only contract to implement is Stage.Run, which must write the complete
// output to the temp path it is handed; the runner renames the temp file into
// place on success, so an interrupted run never leaves a truncated artifact
// that a later invocation would treat as up to date.
package pipeline

import (
	"context"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Stage describes one artifact transformation in the chain.
type Stage struct {
	// Name identifies the stage in logs and error messages.
	Name string
	// Input is the path of the artifact this stage consumes.  Empty for a
	// source stage (e.g. a remote fetch).
	Input string
	// Output is the path of the artifact this stage produces.
	Output string
	// Run produces the output.  tmpPath is a sibling of Output; the runner
	// renames it to Output after Run returns nil.
	Run func(ctx context.Context, tmpPath string) error
	// Intermediate marks the output as reclaimable: the stage runs only when
	// a downstream stage actually needs the output to exist, never merely
	// because the output is absent.
	Intermediate bool
	// RemoveInput reclaims the input artifact after the output has been
	// renamed into place.
	RemoveInput bool
}

func tmpPath(output string) string {
	return output + ".tmp"
}

// stale reports whether out must be regenerated from in.  A missing input
// with an existing output is not stale: the input was an intermediate that
// has already been reclaimed.
func stale(in, out string) (bool, error) {
	outInfo, err := os.Stat(out)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, errors.E(err, "stat", out)
	}
	if in == "" {
		return false, nil
	}
	inInfo, err := os.Stat(in)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.E(err, "stat", in)
	}
	return outInfo.ModTime().Before(inInfo.ModTime()), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Run executes the stages in order, skipping every stage whose output is
// already up to date.  stages must form a linear chain: each stage's Input is
// the previous stage's Output (source stages excepted).
func Run(ctx context.Context, stages []*Stage) error {
	need := make([]bool, len(stages))

	// Reverse demand pass.  demanded is set when the following stage must run
	// but its input is gone, which forces this stage to regenerate it; this
	// is how an intermediate output (the raw fetch) avoids being rebuilt when
	// every downstream artifact is already in place.
	demanded := false
	for i := len(stages) - 1; i >= 0; i-- {
		s := stages[i]
		if demanded {
			need[i] = true
		} else if !s.Intermediate {
			isStale, err := stale(s.Input, s.Output)
			if err != nil {
				return err
			}
			need[i] = isStale
		}
		demanded = need[i] && s.Input != "" && !exists(s.Input)
	}

	ran := false
	for i, s := range stages {
		if !need[i] && !ran {
			log.Debug.Printf("%s: %s is up to date", s.Name, s.Output)
			continue
		}
		if err := runStage(ctx, s); err != nil {
			return err
		}
		ran = true
	}
	return nil
}

func runStage(ctx context.Context, s *Stage) error {
	log.Printf("%s: producing %s", s.Name, s.Output)
	tmp := tmpPath(s.Output)
	if err := s.Run(ctx, tmp); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Error.Printf("%s: removing %s: %v", s.Name, tmp, rmErr)
		}
		return errors.E(err, s.Name, s.Output)
	}
	if err := os.Rename(tmp, s.Output); err != nil {
		return errors.E(err, s.Name, "rename", tmp)
	}
	if s.RemoveInput {
		if err := os.Remove(s.Input); err != nil {
			return errors.E(err, s.Name, "reclaim", s.Input)
		}
	}
	return nil
}

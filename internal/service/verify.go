package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/bnema/segbench/internal/domain"
	"golang.org/x/crypto/blake2b"
)

// Equivalence compares the sequential and parallel outputs segment by segment.
type Equivalence struct {
	Equivalent bool
	Mismatches []int
}

// VerifyEquivalence hashes every pair of artifacts with BLAKE2b-256. Differing pairs are
// reported, not treated as an error; an error means the comparison itself could not run.
func VerifyEquivalence(seq, par []domain.ProcessingResult) (Equivalence, error) {
	if len(seq) != len(par) {
		return Equivalence{}, fmt.Errorf("result count differs: sequential %d, parallel %d", len(seq), len(par))
	}

	byIndex := func(a, b domain.ProcessingResult) int { return a.Index - b.Index }
	seq = slices.Clone(seq)
	par = slices.Clone(par)
	slices.SortFunc(seq, byIndex)
	slices.SortFunc(par, byIndex)

	eq := Equivalence{Equivalent: true}
	for i := range seq {
		if seq[i].Index != par[i].Index {
			return Equivalence{}, fmt.Errorf("segment index mismatch: %d vs %d", seq[i].Index, par[i].Index)
		}
		a, err := fileDigest(seq[i].OutputPath)
		if err != nil {
			return Equivalence{}, err
		}
		b, err := fileDigest(par[i].OutputPath)
		if err != nil {
			return Equivalence{}, err
		}
		if !bytes.Equal(a, b) {
			eq.Equivalent = false
			eq.Mismatches = append(eq.Mismatches, seq[i].Index)
		}
	}
	return eq, nil
}

func fileDigest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum(nil), nil
}

// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merge

import (
	"errors"
	"math"
	"slices"
	"sort"
	"testing"
)

func TestGenerateKnownPrefixes(t *testing.T) {
	cases := []struct {
		name  string
		basis []uint64
		want  []uint64
	}{
		{"pratt", []uint64{2, 3}, []uint64{1, 2, 3, 4, 6, 8, 9, 12, 16, 18}},
		{"hamming", []uint64{2, 3, 5}, []uint64{1, 2, 3, 4, 5, 6, 8, 9, 10, 12}},
		{"two-five", []uint64{2, 5}, []uint64{1, 2, 4, 5, 8, 10, 16, 20, 25, 32}},
		{"powers-of-two", []uint64{2}, []uint64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512}},
	}
	for _, tc := range cases {
		r, err := Generate(tc.basis, len(tc.want))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if r.Status != StatusComplete {
			t.Fatalf("%s: unexpected status: %v", tc.name, r.Status)
		}
		if !slices.Equal(r.Terms, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, r.Terms, tc.want)
		}
	}
}

func TestGenerateStrictlyIncreasingNoDuplicates(t *testing.T) {
	r, err := Generate([]uint64{2, 3, 5, 7}, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Terms[0] != 1 {
		t.Fatalf("sequence must start at 1, got %d", r.Terms[0])
	}
	for i := 1; i < len(r.Terms); i++ {
		if r.Terms[i] <= r.Terms[i-1] {
			t.Fatalf("not strictly increasing at %d: %d <= %d", i, r.Terms[i], r.Terms[i-1])
		}
	}
}

// Soundness + completeness against a brute-force enumeration: every returned
// term factors over the basis, and no smooth number below the returned
// maximum is missing.
func TestGenerateMatchesBruteForce(t *testing.T) {
	basis := []uint64{2, 3, 5}
	const n = 200
	r, err := Generate(basis, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	maxTerm := r.Last()

	var brute []uint64
	for x := uint64(1); x <= maxTerm; x++ {
		v := x
		for _, p := range basis {
			for v%p == 0 {
				v /= p
			}
		}
		if v == 1 {
			brute = append(brute, x)
		}
	}
	sort.Slice(brute, func(i, j int) bool { return brute[i] < brute[j] })
	if !slices.Equal(r.Terms, brute) {
		t.Fatalf("merge output diverges from brute force: got %d terms, want %d", len(r.Terms), len(brute))
	}
}

func TestGenerate3SmoothWidthBoundary(t *testing.T) {
	// The 1343rd and 1344th 3-smooth numbers are the last two representable
	// in uint64; the 1345th does not exist at this width.
	r, err := Generate([]uint64{2, 3}, 1343)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != StatusComplete || r.Last() != 17748888853923495936 {
		t.Fatalf("unexpected term #1343: %d (status %v)", r.Last(), r.Status)
	}

	r, err = Generate([]uint64{2, 3}, 1344)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != StatusComplete || r.Last() != 17991041643939889152 {
		t.Fatalf("unexpected term #1344: %d (status %v)", r.Last(), r.Status)
	}

	r, err = Generate([]uint64{2, 3}, 1345)
	if err != nil {
		t.Fatalf("expected truncation, got error: %v", err)
	}
	if !r.Truncated() {
		t.Fatalf("expected truncated result for n=1345")
	}
	if len(r.Terms) != 1344 || r.Last() != 17991041643939889152 {
		t.Fatalf("truncated run must still carry all 1344 exact terms, got %d", len(r.Terms))
	}
}

func TestPowerChainWidthBoundary(t *testing.T) {
	r, err := Generate([]uint64{2}, 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != StatusComplete || r.Last() != uint64(1)<<63 {
		t.Fatalf("unexpected 64th power-of-two term: %d", r.Last())
	}

	r, err = Generate([]uint64{2}, 65)
	if err != nil {
		t.Fatalf("expected truncation, got error: %v", err)
	}
	if !r.Truncated() || len(r.Terms) != 64 {
		t.Fatalf("expected 64 truncated terms, got %d (status %v)", len(r.Terms), r.Status)
	}
}

// A basis of large primes exhausts almost immediately: the run must end as a
// truncated partial success once every next candidate would overflow.
func TestGenerateExhaustionLargePrimes(t *testing.T) {
	p := uint64(math.MaxUint64/2 + 1) // not prime, but the engine only needs distinct values
	r, err := Generate([]uint64{p - 2, p}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Truncated() {
		t.Fatalf("expected truncation, got status %v", r.Status)
	}
	want := []uint64{1, p - 2, p}
	if !slices.Equal(r.Terms, want) {
		t.Fatalf("got %v want %v", r.Terms, want)
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	if _, err := Generate(nil, 5); !errors.Is(err, ErrEmptyBasis) {
		t.Fatalf("expected ErrEmptyBasis, got %v", err)
	}
	if _, err := Generate([]uint64{2, 3}, 0); !errors.Is(err, ErrBadCount) {
		t.Fatalf("expected ErrBadCount, got %v", err)
	}
	if _, err := Generate([]uint64{3, 2}, 5); !errors.Is(err, ErrBadBasis) {
		t.Fatalf("expected ErrBadBasis for descending basis, got %v", err)
	}
	if _, err := Generate([]uint64{2, 2, 3}, 5); !errors.Is(err, ErrBadBasis) {
		t.Fatalf("expected ErrBadBasis for duplicate, got %v", err)
	}
	if _, err := Generate([]uint64{1, 2}, 5); !errors.Is(err, ErrBadBasis) {
		t.Fatalf("expected ErrBadBasis for unit element, got %v", err)
	}
}

func TestGenerateSingleTerm(t *testing.T) {
	r, err := Generate([]uint64{997}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != StatusComplete || len(r.Terms) != 1 || r.Terms[0] != 1 {
		t.Fatalf("n=1 must yield exactly the seed: %v", r.Terms)
	}
}

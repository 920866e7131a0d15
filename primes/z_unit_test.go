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

package primes

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

func TestUpToSmallBounds(t *testing.T) {
	cases := []struct {
		k    uint64
		want []uint64
	}{
		{0, nil},
		{1, nil},
		{2, []uint64{2}},
		{3, []uint64{2, 3}},
		{4, []uint64{2, 3}},
		{7, []uint64{2, 3, 5, 7}}, // inclusive bound: 7 itself belongs
		{30, []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}},
	}
	for _, tc := range cases {
		got, err := UpTo(tc.k)
		if err != nil {
			t.Fatalf("UpTo(%d): unexpected error: %v", tc.k, err)
		}
		if !slices.Equal(got, tc.want) {
			t.Fatalf("UpTo(%d) = %v, want %v", tc.k, got, tc.want)
		}
	}
}

func TestUpToCount(t *testing.T) {
	got, err := UpTo(10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1229 { // pi(10000)
		t.Fatalf("pi(10000) = %d, want 1229", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("not ascending at %d", i)
		}
	}
}

func TestUpToBoundGuard(t *testing.T) {
	if _, err := UpTo(MaxBound + 1); !errors.Is(err, ErrBoundTooLarge) {
		t.Fatalf("expected ErrBoundTooLarge, got %v", err)
	}
}

func TestIsPrime(t *testing.T) {
	primes := []uint64{2, 3, 5, 7, 11, 13, 97, 101, 7919, 104729}
	for _, p := range primes {
		if !IsPrime(p) {
			t.Fatalf("IsPrime(%d) = false", p)
		}
	}
	composites := []uint64{0, 1, 4, 6, 9, 15, 21, 25, 49, 91, 7917, 104730}
	for _, c := range composites {
		if IsPrime(c) {
			t.Fatalf("IsPrime(%d) = true", c)
		}
	}
}

func TestSieveSourceMemoAndPrefix(t *testing.T) {
	s := NewSieve()
	big, err := s.UpTo(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	small, err := s.UpTo(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(small, []uint64{2, 3, 5, 7}) {
		t.Fatalf("prefix query after larger memo: %v", small)
	}
	if len(big) != 25 { // pi(100)
		t.Fatalf("pi(100) = %d, want 25", len(big))
	}

	// The returned slice must be a copy, never the memo itself.
	small[0] = 42
	again, _ := s.UpTo(10)
	if again[0] != 2 {
		t.Fatalf("memo was mutated through a returned slice")
	}
}

func TestSieveSourceConcurrent(t *testing.T) {
	s := NewSieve()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(k uint64) {
			defer wg.Done()
			ps, err := s.UpTo(k)
			if err != nil {
				t.Errorf("UpTo(%d): %v", k, err)
				return
			}
			for _, p := range ps {
				if p > k {
					t.Errorf("UpTo(%d) returned %d", k, p)
					return
				}
			}
		}(uint64(10 + i*37))
	}
	wg.Wait()
}

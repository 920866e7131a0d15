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

package spec

import (
	"slices"
	"testing"
)

func TestGetBasisSettingByYAMLBounded(t *testing.T) {
	raw := []byte(`
basis_name: humble
basis_id: 7
kind: bounded
bound: 7
note: 7-smooth numbers
`)
	bs, err := GetBasisSettingByYAML(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bs.BasisName != "humble" || bs.BasisID != 7 || bs.Kind != KindBounded || bs.Bound != 7 {
		t.Fatalf("unexpected setting: %+v", bs)
	}
	if bs.MaxTerms != DefaultMaxTerms {
		t.Fatalf("max_terms default not applied: %d", bs.MaxTerms)
	}
}

func TestGetBasisSettingByJSONExplicitCanonicalOrder(t *testing.T) {
	raw := []byte(`{"basis_name":"two-five","basis_id":25,"kind":"explicit","primes":[5,2,5,2]}`)
	bs, err := GetBasisSettingByJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(bs.Primes, []uint64{2, 5}) {
		t.Fatalf("primes not canonicalized: %v", bs.Primes)
	}
}

func TestBasisSettingRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing name", `{"basis_id":1,"kind":"bounded","bound":3}`},
		{"unknown kind", `{"basis_name":"x","basis_id":1,"kind":"magic"}`},
		{"explicit without primes", `{"basis_name":"x","basis_id":1,"kind":"explicit"}`},
		{"explicit with composite", `{"basis_name":"x","basis_id":1,"kind":"explicit","primes":[2,9]}`},
		{"explicit with unit", `{"basis_name":"x","basis_id":1,"kind":"explicit","primes":[1,2]}`},
		{"explicit with bound", `{"basis_name":"x","basis_id":1,"kind":"explicit","primes":[2],"bound":5}`},
		{"bounded with primes", `{"basis_name":"x","basis_id":1,"kind":"bounded","bound":5,"primes":[2]}`},
	}
	for _, tc := range cases {
		if _, err := GetBasisSettingByJSON([]byte(tc.raw)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestBasisSettingBoundBelowTwoIsLegal(t *testing.T) {
	// bound < 2 means the family is just {1}; the strategy layer handles it.
	bs, err := GetBasisSettingByJSON([]byte(`{"basis_name":"unit","basis_id":1,"kind":"bounded","bound":0}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bs.Bound != 0 {
		t.Fatalf("unexpected bound: %d", bs.Bound)
	}
}

func TestBasisSettingMaxTermsClamped(t *testing.T) {
	bs, err := GetBasisSettingByJSON([]byte(`{"basis_name":"x","basis_id":1,"kind":"bounded","bound":3,"max_terms":999999999}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bs.MaxTerms != DefaultMaxTerms {
		t.Fatalf("max_terms not clamped: %d", bs.MaxTerms)
	}
}

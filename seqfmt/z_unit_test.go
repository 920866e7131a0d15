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

package seqfmt

import (
	"math"
	"slices"
	"testing"
)

func TestEncodeDecodeTerms(t *testing.T) {
	terms := []uint64{1, 2, 3, 4, 6, 8, 9, 12, 16, 18, math.MaxUint64}
	payload := EncodeTerms(terms)
	got, err := DecodeTerms(payload, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, terms) {
		t.Fatalf("roundtrip mismatch: %v", got)
	}
}

func TestEncodeTermsIsCompactForDensePrefix(t *testing.T) {
	terms := []uint64{1, 2, 3, 4, 6, 8, 9, 12, 16, 18}
	payload := EncodeTerms(terms)
	// count byte + ten single-byte deltas
	if len(payload) != 11 {
		t.Fatalf("expected 11 bytes, got %d", len(payload))
	}
}

func TestDecodeTermsGuards(t *testing.T) {
	terms := []uint64{1, 2, 4, 8}
	payload := EncodeTerms(terms)

	if _, err := DecodeTerms(payload, 2); err == nil {
		t.Fatalf("expected maxTerms guard to trip")
	}
	if _, err := DecodeTerms(payload[:len(payload)-1], 0); err == nil {
		t.Fatalf("expected truncation error")
	}
	if _, err := DecodeTerms(nil, 0); err == nil {
		t.Fatalf("expected error on empty payload")
	}
}

func TestBase64RoundTrip(t *testing.T) {
	payload := EncodeTerms([]uint64{1, 5, 25, 125})
	s := EncodeBase64URL(payload)
	back, err := DecodeBase64URL(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := DecodeTerms(back, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, []uint64{1, 5, 25, 125}) {
		t.Fatalf("roundtrip mismatch: %v", got)
	}
}

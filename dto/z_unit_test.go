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

package dto

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/zintix-labs/smoothlab/sdk/merge"
	"github.com/zintix-labs/smoothlab/seqfmt"
	"github.com/zintix-labs/smoothlab/spec"
)

func TestDecodeSequenceRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/seq?basis=hamming&bid=3&n=100&export=true", nil)
	req, err := DecodeSequenceRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.BasisName != "hamming" || req.BasisID != 3 || req.N != 100 || !req.Export {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeSequenceRequestPOST(t *testing.T) {
	payload := map[string]any{
		"basis": "pratt",
		"n":     50,
	}
	data, _ := json.Marshal(payload)
	r := httptest.NewRequest(http.MethodPost, "/seq", bytes.NewReader(data))
	req, err := DecodeSequenceRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.BasisName != "pratt" || req.N != 50 || req.Export {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeSequenceRequestRejectsUnknownFields(t *testing.T) {
	data := []byte(`{"basis":"pratt","n":10,"unknown":true}`)
	r := httptest.NewRequest(http.MethodPost, "/seq", bytes.NewReader(data))
	if _, err := DecodeSequenceRequest(r); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestDecodeBoundedRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/bounded?k=7&n=25", nil)
	req, err := DecodeBoundedRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Bound != 7 || req.N != 25 || req.Export {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeWithPrimesRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/withprimes?primes=2,%203,5&n=10", nil)
	req, err := DecodeWithPrimesRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(req.Primes, []uint64{2, 3, 5}) || req.N != 10 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeWithPrimesRequestBadEntry(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/withprimes?primes=2,x&n=10", nil)
	if _, err := DecodeWithPrimesRequest(r); err == nil {
		t.Fatalf("expected error for bad primes entry")
	}
}

func TestNewSequenceResultDTO(t *testing.T) {
	res, err := merge.Generate([]uint64{2, 3, 5}, 10)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	dto, err := NewSequenceResultDTO("hamming", 3, spec.KindExplicit, []uint64{2, 3, 5}, 10, res, false)
	if err != nil {
		t.Fatalf("dto: %v", err)
	}
	if dto.Produced != 10 || dto.Status != "complete" || dto.Truncated {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if dto.Last != 12 || !slices.Equal(dto.Terms[:4], []uint64{1, 2, 3, 4}) {
		t.Fatalf("unexpected terms: %+v", dto)
	}
}

func TestNewSequenceResultDTOExport(t *testing.T) {
	res, err := merge.Generate([]uint64{2, 3}, 20)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	dto, err := NewSequenceResultDTO("pratt", 2, spec.KindExplicit, []uint64{2, 3}, 20, res, true)
	if err != nil {
		t.Fatalf("dto: %v", err)
	}
	if dto.Terms != nil || dto.TermsB64U == "" {
		t.Fatalf("export dto should carry payload only: %+v", dto)
	}
	raw, err := seqfmt.DecodeBase64URL(dto.TermsB64U)
	if err != nil {
		t.Fatalf("decode b64u: %v", err)
	}
	back, err := seqfmt.DecodeTerms(raw, 100)
	if err != nil {
		t.Fatalf("decode terms: %v", err)
	}
	if !slices.Equal(back, res.Terms) {
		t.Fatalf("roundtrip mismatch")
	}
}

func TestNewSequenceResultDTONil(t *testing.T) {
	if _, err := NewSequenceResultDTO("x", 1, spec.KindExplicit, nil, 1, nil, false); err == nil {
		t.Fatalf("expected error for nil result")
	}
}

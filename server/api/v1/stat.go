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

package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zintix-labs/smoothlab/dto"
	"github.com/zintix-labs/smoothlab/sdk/merge"
	"github.com/zintix-labs/smoothlab/seqfmt"
	"github.com/zintix-labs/smoothlab/server/httperr"
	"github.com/zintix-labs/smoothlab/spec"
	"github.com/zintix-labs/smoothlab/stats"
)

// Stat 對已註冊 basis 即時生成並回傳統計報告（growth / 分布）。
func (c *SeqHandler) Stat(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeSequenceRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := q.Context()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	st, err := c.rt.Stat(ctx, req)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// TermsStat 是 StatTerms 的請求體：呼叫端貼上現成的序列
// （terms 陣列或 delta 編碼後的 base64url payload 擇一），由伺服器重算統計。
type TermsStat struct {
	BasisName string   `json:"basis_name"`
	Primes    []uint64 `json:"primes"`
	Terms     []uint64 `json:"terms"`
	TermsB64U string   `json:"terms_b64u"`
}

func StatTerms(w http.ResponseWriter, r *http.Request) {
	// Post方法限定
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// 嘗試解析
	dst := new(TermsStat)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	terms := dst.Terms
	if dst.TermsB64U != "" {
		payload, err := seqfmt.DecodeBase64URL(dst.TermsB64U)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		terms, err = seqfmt.DecodeTerms(payload, spec.DefaultMaxTerms)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if len(terms) < 1 {
		http.Error(w, "terms must not be empty", http.StatusBadRequest)
		return
	}

	// 繞過引擎，直接用貼上的序列構造 Result（status 視為 complete）
	res := &merge.Result{Terms: terms, Status: merge.StatusComplete}
	st := stats.NewSeqReport(dst.BasisName, 0, spec.KindExplicit, dst.Primes, len(terms), res)
	st.Done()

	if err := json.NewEncoder(w).Encode(st); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
}

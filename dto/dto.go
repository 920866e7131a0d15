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
	"github.com/zintix-labs/smoothlab/errs"
	"github.com/zintix-labs/smoothlab/sdk/merge"
	"github.com/zintix-labs/smoothlab/seqfmt"
	"github.com/zintix-labs/smoothlab/spec"
)

// SequenceResult 為對外輸出的生成結果序列化結構。
type SequenceResult struct {
	BasisName string   `json:"basis"`                // basis 名稱（ad-hoc 請求為空）
	BasisID   spec.BID `json:"bid,omitempty"`        // basis 編號
	Kind      string   `json:"kind"`                 // bounded / explicit
	Primes    []uint64 `json:"primes"`               // 實際參與 merge 的 basis（canonical 升冪）
	Requested int      `json:"requested"`            // 請求項數
	Produced  int      `json:"produced"`             // 實際項數
	Status    string   `json:"status"`               // complete / truncated
	Truncated bool     `json:"truncated"`            // status == truncated 的冗餘旗標，方便客戶端判斷
	Last      uint64   `json:"last,omitempty"`       // 最後一項
	Terms     []uint64 `json:"terms,omitempty"`      // 完整序列（export 模式下省略）
	TermsB64U string   `json:"terms_b64u,omitempty"` // delta 編碼 payload 的 Base64URL（export 模式）
}

// NewSequenceResultDTO 將一次生成結果轉為輸出結構。
//
// export 為 true 時不輸出 terms 陣列，改輸出 delta 編碼後的
// Base64URL payload（大序列的傳輸成本差一個數量級）。
func NewSequenceResultDTO(name string, bid spec.BID, kind spec.BasisKind, basis []uint64, requested int, res *merge.Result, export bool) (SequenceResult, error) {
	if res == nil {
		return SequenceResult{}, errs.NewWarn("sequence result is nil")
	}

	dto := SequenceResult{
		BasisName: name,
		BasisID:   bid,
		Kind:      string(kind),
		Primes:    basis,
		Requested: requested,
		Produced:  len(res.Terms),
		Status:    res.Status.String(),
		Truncated: res.Truncated(),
	}
	if len(res.Terms) > 0 {
		dto.Last = res.Last()
	}

	if export {
		dto.TermsB64U = seqfmt.EncodeBase64URL(seqfmt.EncodeTerms(res.Terms))
	} else {
		dto.Terms = res.Terms
	}

	return dto, nil
}

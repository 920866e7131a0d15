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

// Package merge 是 smoothlab 的核心：multi-pointer merge 引擎。
//
// 給定一組升冪、無重複的質數 basis（m ≥ 1），產生該 basis 之下最小的 n 個
// smooth number（從 1 開始、嚴格遞增、不重複、不遺漏）。
//
// 演算法是 Hamming sequence（2 路 merge）對 m 路的一般化：
//   - 每個質數 j 維護一個指標 ptr[j]，其候選值恆為 basis[j] * terms[ptr[j]]，
//     也就是「該質數還沒貢獻過的最小倍數」。
//   - 每輪取所有候選值的最小者 v 作為下一項。
//   - 關鍵規則：所有候選值等於 v 的指標「一起」前進。一個值可能同時是多個
//     質數的倍數（例如 {2,3} 之下的 6）；若只推進其中一個指標，另一個會在
//     下一輪重新提出同一個值，造成重複輸出或指標停滯。
//
// 全程使用 checked 64-bit 乘法：
//   - 迴圈中某質數的下一個候選溢位 → 該質數標記為 exhausted，之後永遠不再
//     參與取最小（其他質數可能還撐得出幾項）。
//   - 所有質數都 exhausted 而項數未達 n → 回傳 StatusTruncated（合法的部分
//     成功，不是錯誤）。
//   - 連第二項都生不出來就溢位 → ErrOverflow（計算無效，硬失敗）。
package merge

import (
	"math/bits"

	"github.com/zintix-labs/smoothlab/errs"
)

// Status 標記一次 generation 的完成狀態。
type Status uint8

const (
	// StatusComplete 表示回傳了呼叫端要求的完整 n 項。
	StatusComplete Status = iota
	// StatusTruncated 表示 basis 在 uint64 範圍內耗盡，回傳項數少於要求。
	StatusTruncated
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusTruncated:
		return "truncated"
	default:
		return "unknown"
	}
}

// Result 是一次 generation 的輸出。
//
// Terms 恆以 1 開頭、嚴格遞增。Status 讓呼叫端能區分
// 「拿到剛好要求的數量」與「basis 在這個整數寬度下就只有這麼多」。
type Result struct {
	Terms  []uint64
	Status Status
}

// Truncated 回報此結果是否因 basis 耗盡而少於要求項數。
func (r *Result) Truncated() bool { return r.Status == StatusTruncated }

// Last 回傳最後一項。Terms 不可能為空（至少含 seed 1）。
func (r *Result) Last() uint64 { return r.Terms[len(r.Terms)-1] }

var (
	// ErrOverflow ：還沒產出第二項就溢位，整次呼叫無效。
	ErrOverflow = errs.NewFatal("u64 overflow before the first generated term")
	// ErrEmptyBasis ：merge 引擎的前置條件是 m ≥ 1；空 basis 的語意
	// （只有 1 是 smooth）由上層策略處理，不會落到這裡。
	ErrEmptyBasis = errs.NewWarn("basis must contain at least one prime")
	// ErrBadBasis ：basis 必須嚴格升冪（同時排除重複值）。
	ErrBadBasis = errs.NewWarn("basis must be strictly ascending without duplicates")
	// ErrBadCount ：要求的項數必須 ≥ 1。
	ErrBadCount = errs.NewWarn("term count must be >= 1")
)

// Generate 產生 basis 之下最小的 n 個 smooth number。
//
// 前置條件：basis 嚴格升冪、每個元素 > 1、n ≥ 1。元素是否真的是質數由
// 上層策略驗證；引擎只依賴「兩兩互異」這一點維持正確性。
//
// 回傳：
//   - (Result{Status: StatusComplete}, nil)：拿到完整 n 項。
//   - (Result{Status: StatusTruncated}, nil)：basis 耗盡，Terms 少於 n 項。
//   - (nil, err)：輸入不合法或硬溢位。
func Generate(basis []uint64, n int) (*Result, error) {
	if len(basis) == 0 {
		return nil, ErrEmptyBasis
	}
	if n < 1 {
		return nil, ErrBadCount
	}
	if basis[0] < 2 {
		return nil, ErrBadBasis
	}
	for j := 1; j < len(basis); j++ {
		if basis[j] <= basis[j-1] {
			return nil, ErrBadBasis
		}
	}

	if len(basis) == 1 {
		return powerChain(basis[0], n), nil
	}
	return mergeChains(basis, n)
}

// powerChain 處理單質數 basis：序列就是 p 的冪，不需要 merge。
// 對應一般路徑的 truncation 語意：下一個冪溢位即截斷。
func powerChain(p uint64, n int) *Result {
	terms := make([]uint64, 1, n)
	terms[0] = 1
	x := uint64(1)
	for len(terms) < n {
		next, ok := mul64(x, p)
		if !ok {
			return &Result{Terms: terms, Status: StatusTruncated}
		}
		x = next
		terms = append(terms, x)
	}
	return &Result{Terms: terms, Status: StatusComplete}
}

func mergeChains(basis []uint64, n int) (*Result, error) {
	m := len(basis)
	terms := make([]uint64, 1, n)
	terms[0] = 1

	ptr := make([]int, m)
	cand := make([]uint64, m)
	// exhausted 狀態用獨立旗標而不是哨兵值：MaxUint64 本身是
	// 3·5·17·257·641·65537·6700417，對某些 basis 是合法的候選值。
	live := make([]bool, m)

	for j, p := range basis {
		v, ok := mul64(p, terms[0])
		if !ok {
			// basis 元素本身放得進 uint64，乘 1 理論上不會溢位；
			// 防衛性地維持規格的硬失敗語意（n=1 時 seed 仍可回傳）。
			if n == 1 {
				return &Result{Terms: terms, Status: StatusComplete}, nil
			}
			return nil, ErrOverflow
		}
		cand[j] = v
		live[j] = true
	}

	for len(terms) < n {
		// 線性掃描取最小候選。m 很小，優先佇列省不了什麼。
		v := uint64(0)
		found := false
		for j := 0; j < m; j++ {
			if !live[j] {
				continue
			}
			if !found || cand[j] < v {
				v = cand[j]
				found = true
			}
		}
		if !found {
			// 所有質數 exhausted：回報目前為止的合法前綴。
			return &Result{Terms: terms, Status: StatusTruncated}, nil
		}

		terms = append(terms, v)

		// 推進「所有」命中最小值的指標（de-duplication 規則）。
		for j := 0; j < m; j++ {
			if !live[j] || cand[j] != v {
				continue
			}
			ptr[j]++
			next, ok := mul64(basis[j], terms[ptr[j]])
			if !ok {
				live[j] = false
				continue
			}
			cand[j] = next
		}
	}
	return &Result{Terms: terms, Status: StatusComplete}, nil
}

// mul64 是 checked 乘法：高 64 位非零即溢位。
func mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

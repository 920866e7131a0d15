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

// Package primes 提供 smoothlab 需要的「質數來源（prime source）」。
//
// merge 引擎只吃「已就緒的 basis」；本包負責兩件事：
//  1. UpTo(k)：回傳所有 ≤ k 的質數（升冪、無重複、無遺漏），給 bounded basis 用。
//  2. IsPrime(n)：驗證 explicit basis 的元素是否為質數（不合格的輸入必須被擋下，
//     否則產出的序列就不是 smooth number 了）。
//
// 兩者都是純函數；Source 則是可注入/可替換的介面（預設實作帶 memo，可併發查詢）。
package primes

import (
	"sync"

	"github.com/zintix-labs/smoothlab/errs"
)

// MaxBound 是 UpTo 能接受的最大 smoothness bound。
//
// 篩法需要 O(k) 的記憶體；本 lab 的 basis 規模設定在「小質數集合」
// （複雜度 O(n·m) 的線性掃描假設 m 很小），放寬到 2^24 已遠超實際用途。
const MaxBound uint64 = 1 << 24

// ErrBoundTooLarge 表示呼叫端要求的 bound 超出 MaxBound。
var ErrBoundTooLarge = errs.Warnf("smoothness bound exceeds limit %d", MaxBound)

// UpTo 回傳所有 ≤ k 的質數，升冪排列。
//
// 邊界含 k 本身：k 為質數時 k 會出現在結果裡（inclusive smoothness bound）。
// k < 2 回傳空 slice（不是 error；「沒有質數」是合法結果，由上層決定語意）。
func UpTo(k uint64) ([]uint64, error) {
	if k > MaxBound {
		return nil, ErrBoundTooLarge
	}
	if k < 2 {
		return nil, nil
	}

	// Sieve of Eratosthenes。只從 i*i 開始劃掉，i > sqrt(k) 後不再有新合數。
	limit := int(k)
	composite := make([]bool, limit+1)
	for i := 2; i*i <= limit; i++ {
		if composite[i] {
			continue
		}
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}

	out := make([]uint64, 0, sizeHint(limit))
	for i := 2; i <= limit; i++ {
		if !composite[i] {
			out = append(out, uint64(i))
		}
	}
	return out, nil
}

// sizeHint 粗估 π(k)，只拿來當 slice 預配容量（k/ln(k) 的保守整數近似）。
func sizeHint(k int) int {
	switch {
	case k < 17:
		return 8
	case k < 1 << 10:
		return k / 4
	default:
		return k / 8
	}
}

// IsPrime 以試除法判定 n 是否為質數。
//
// explicit basis 的元素通常是小質數，試除法（2 之後只試奇數、到 sqrt(n) 為止）
// 對這種輸入已綽綽有餘；迴圈條件寫成 i <= n/i 以避免 i*i 溢位。
func IsPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	if n%3 == 0 {
		return n == 3
	}
	for i := uint64(5); i <= n/i; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// Source 是 bounded basis 取得質數序列的介面。
//
// 合約：回傳的序列必須升冪、無重複、涵蓋所有 ≤ k 的質數；
// 且必須可被多個 goroutine 併發查詢（generation calls 彼此獨立）。
type Source interface {
	UpTo(k uint64) ([]uint64, error)
}

// SieveSource 是預設的 Source 實作：包一層 memo 的 Eratosthenes 篩。
//
// memo 策略：記住「目前為止篩過的最大 bound」的完整質數表，
// 較小的 bound 以二分切片回傳，避免重複篩相同範圍。
type SieveSource struct {
	mu     sync.Mutex
	bound  uint64
	primes []uint64
}

// NewSieve 建立一個空的 SieveSource。
func NewSieve() *SieveSource {
	return &SieveSource{}
}

// UpTo 實作 Source。
func (s *SieveSource) UpTo(k uint64) ([]uint64, error) {
	if k > MaxBound {
		return nil, ErrBoundTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if k > s.bound {
		ps, err := UpTo(k)
		if err != nil {
			return nil, err
		}
		s.bound = k
		s.primes = ps
	}

	// 取 primes 中 ≤ k 的前綴。回傳 copy，避免呼叫端改動 memo。
	idx := len(s.primes)
	for idx > 0 && s.primes[idx-1] > k {
		idx--
	}
	return append([]uint64(nil), s.primes[:idx]...), nil
}

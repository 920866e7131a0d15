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

// Package spec 定義 basis 設定檔（BasisSetting）的結構與解析/驗證。
//
// 一份設定檔描述一個「命名的 smooth number 家族」：
//   - bounded  ：basis = 所有 ≤ bound 的質數（例如 bound: 7 → 7-smooth / humble numbers）。
//   - explicit ：basis = 設定檔列出的質數集合（例如 primes: [2, 5]）。
//
// 設定檔以 YAML/JSON 撰寫、經 fs.FS 注入（go:embed 或 os.DirFS），
// 由 catalog 統一登錄；本包只負責單檔的 decode + init 檢查。
package spec

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zintix-labs/smoothlab/errs"
	"github.com/zintix-labs/smoothlab/primes"
)

// BID 是 basis 在 catalog 內的唯一編號。
type BID uint

// BasisKind 標記 basis 的取得方式。
type BasisKind string

const (
	KindBounded  BasisKind = "bounded"
	KindExplicit BasisKind = "explicit"
)

const (
	// DefaultMaxTerms 是單次 generation 的預設項數上限（設定檔未給 max_terms 時採用）。
	DefaultMaxTerms = 1_000_000
	// MaxBasisPrimes 限制 explicit basis 的大小。引擎每輪做 O(m) 線性掃描，
	// m 的設計假設就是「小質數集合」。
	MaxBasisPrimes = 64
)

// BasisSetting 包含產生一個 smooth number 家族所需的所有設定。
type BasisSetting struct {
	BasisName string    `yaml:"basis_name" json:"basis_name"`
	BasisID   BID       `yaml:"basis_id"   json:"basis_id"`
	Kind      BasisKind `yaml:"kind"       json:"kind"`
	Bound     uint64    `yaml:"bound"      json:"bound"`      // bounded 專用：inclusive smoothness bound
	Primes    []uint64  `yaml:"primes"     json:"primes"`     // explicit 專用：質數集合（输入順序不拘）
	MaxTerms  int       `yaml:"max_terms"  json:"max_terms"`  // 單次請求的項數上限；<1 時套用 DefaultMaxTerms
	Note      string    `yaml:"note"       json:"note"`       // 說明文字，只用於觀測/目錄
}

// init 正規化並驗證設定。decode 入口（config_registry）一定會呼叫。
func (bs *BasisSetting) init() error {
	bs.BasisName = strings.TrimSpace(bs.BasisName)

	if bs.MaxTerms < 1 {
		bs.MaxTerms = DefaultMaxTerms
	}
	if bs.MaxTerms > DefaultMaxTerms {
		bs.MaxTerms = DefaultMaxTerms
	}

	// explicit basis 正規化成 canonical 升冪、去重。
	// 結果與輸入順序無關；canonical 順序讓 merge 的 tie-handling 可測試。
	if len(bs.Primes) > 0 {
		slices.Sort(bs.Primes)
		bs.Primes = slices.Compact(bs.Primes)
	}

	return bs.valid()
}

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (bs *BasisSetting) valid() error {
	if bs.BasisName == "" {
		return errs.NewFatal("basis_name required")
	}

	switch bs.Kind {
	case KindBounded:
		if len(bs.Primes) != 0 {
			return errs.NewFatal(fmt.Sprintf("basis_name: %s err: bounded basis must not list primes", bs.BasisName))
		}
		if bs.Bound > primes.MaxBound {
			return errs.NewFatal(fmt.Sprintf("basis_name: %s err: bound %d exceeds limit %d", bs.BasisName, bs.Bound, primes.MaxBound))
		}
		// bound < 2 是合法設定：該家族只有 1 這一項。

	case KindExplicit:
		if bs.Bound != 0 {
			return errs.NewFatal(fmt.Sprintf("basis_name: %s err: explicit basis must not set bound", bs.BasisName))
		}
		if len(bs.Primes) == 0 {
			return errs.NewFatal(fmt.Sprintf("basis_name: %s err: empty primes", bs.BasisName))
		}
		if len(bs.Primes) > MaxBasisPrimes {
			return errs.NewFatal(fmt.Sprintf("basis_name: %s err: more than %d primes", bs.BasisName, MaxBasisPrimes))
		}
		for _, p := range bs.Primes {
			if !primes.IsPrime(p) {
				return errs.NewFatal(fmt.Sprintf("basis_name: %s err: %d is not prime", bs.BasisName, p))
			}
		}

	default:
		return errs.NewFatal(fmt.Sprintf("basis_name: %s err: unknown kind %q", bs.BasisName, bs.Kind))
	}

	return nil
}

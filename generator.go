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

package smoothlab

import (
	"fmt"
	"strings"

	"github.com/zintix-labs/smoothlab/dto"
	"github.com/zintix-labs/smoothlab/errs"
	"github.com/zintix-labs/smoothlab/primes"
	"github.com/zintix-labs/smoothlab/sdk/merge"
	"github.com/zintix-labs/smoothlab/spec"
	"github.com/zintix-labs/smoothlab/stats"
)

// Generator 封裝一個「可對外提供 Generate」的 materialized basis。
//
// 你可以把 Generator 視為一個 basis 的「外殼（shell）」：
//   - 對外：提供 Generate 入口（HTTP/bench 通常只操作 Generator）。
//   - 對內：持有解析完畢的 canonical basis 與該 basis 的請求上限。
//
// 並發語意：
//   - basis 在建立時 materialize，之後完全唯讀；Generate 是純計算，
//     同一個 Generator 可被多 goroutine 同時使用，不需要鎖。
//
// basis 為空（bounded 且 bound < 2）是合法狀態：該家族只有 1 這一項，
// Generate 走 seed-only 短路，不碰 merge 引擎。
type Generator struct {
	basisName string         // basis 名稱（來自 BasisSetting.BasisName，主要用於觀測/日誌）
	basisID   spec.BID       // basis ID（Catalog 內唯一；用於路由與查表）
	kind      spec.BasisKind // bounded / explicit
	basis     []uint64       // canonical 升冪 basis；bounded 時由 prime source 解出
	maxTerms  int            // 單次請求的項數上限（來自設定檔）
}

// newGenerator materialize 一個 BasisSetting。
//
// bounded → 以 prime source 解出所有 ≤ bound 的質數。
// explicit → 設定檔解碼時已正規化成 canonical 升冪，直接取用。
func newGenerator(bs *spec.BasisSetting, src primes.Source) (*Generator, error) {
	g := &Generator{
		basisName: bs.BasisName,
		basisID:   bs.BasisID,
		kind:      bs.Kind,
		maxTerms:  bs.MaxTerms,
	}
	switch bs.Kind {
	case spec.KindBounded:
		basis, err := src.UpTo(bs.Bound)
		if err != nil {
			return nil, err
		}
		g.basis = basis
	case spec.KindExplicit:
		g.basis = append([]uint64(nil), bs.Primes...)
	default:
		return nil, errs.Fatalf("unknown basis kind %q", bs.Kind)
	}
	return g, nil
}

// Generate 產生此 basis 之下最小的 n 個 smooth number。
//
// n 必須在 [1, MaxTerms] 之內；超出上限回傳 Warn 等級錯誤。
// Truncated 不是錯誤：basis 在 uint64 範圍內耗盡時回傳少於 n 項，
// 由 Result.Status 標記。
func (g *Generator) Generate(n int) (*merge.Result, error) {
	if n < 1 {
		return nil, merge.ErrBadCount
	}
	if n > g.maxTerms {
		return nil, errs.Warnf("n %d exceeds max_terms %d", n, g.maxTerms)
	}
	if len(g.basis) == 0 {
		return seedOnly(n)
	}
	return merge.Generate(g.basis, n)
}

// Sequence 為主要公開入口，會驗證生成請求，執行生成並回傳 DTO 結果。
func (g *Generator) Sequence(r *dto.SequenceRequest) (dto.SequenceResult, error) {
	// 1. 校驗請求合法性
	if err := g.valid(r); err != nil {
		return dto.SequenceResult{}, err
	}

	// 2. 生成
	res, err := g.Generate(r.N)
	if err != nil {
		return dto.SequenceResult{}, err
	}

	// 3. dto
	return dto.NewSequenceResultDTO(g.basisName, g.basisID, g.kind, g.Basis(), r.N, res, r.Export)
}

// Report 生成 n 項並回傳完整統計報告（已 Done）。
func (g *Generator) Report(n int) (*stats.SeqReport, error) {
	res, err := g.Generate(n)
	if err != nil {
		return nil, err
	}
	rep := stats.NewSeqReport(g.basisName, g.basisID, g.kind, g.basis, n, res)
	rep.Done()
	return rep, nil
}

func (g *Generator) valid(req *dto.SequenceRequest) error {
	if req.BasisID != 0 && g.basisID != req.BasisID {
		return errs.NewWarn("basis id is not matched")
	}
	// 名稱比對大小寫不敏感，與 catalog 的 lookup 規則一致
	if req.BasisName != "" && !strings.EqualFold(g.basisName, req.BasisName) {
		return errs.NewWarn("basis name is not matched")
	}
	if req.N < 1 {
		return merge.ErrBadCount
	}
	if req.N > g.maxTerms {
		return errs.NewWarn(fmt.Sprintf("n %d exceeds max_terms %d", req.N, g.maxTerms))
	}
	return nil
}

// Name 回傳 basis 名稱。
func (g *Generator) Name() string { return g.basisName }

// BID 回傳 basis ID。
func (g *Generator) BID() spec.BID { return g.basisID }

// Kind 回傳 basis 策略。
func (g *Generator) Kind() spec.BasisKind { return g.kind }

// MaxTerms 回傳單次請求的項數上限。
func (g *Generator) MaxTerms() int { return g.maxTerms }

// Basis 回傳 canonical basis 的拷貝。
func (g *Generator) Basis() []uint64 {
	return append([]uint64(nil), g.basis...)
}

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
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/smoothlab/catalog"
	"github.com/zintix-labs/smoothlab/dto"
	"github.com/zintix-labs/smoothlab/errs"
	"github.com/zintix-labs/smoothlab/sdk/merge"
	"github.com/zintix-labs/smoothlab/spec"
	"github.com/zintix-labs/smoothlab/stats"
)

// LabRuntime 是對外服務用的執行層：每個已註冊的 basis 一個常駐 Generator。
//
// Generator 是唯讀純計算，天生可併發，因此 runtime 不需要 pool；
// 這裡只負責路由（bid/name → Generator）、生命週期與取消語意。
type LabRuntime struct {
	// build-time 來源（只讀引用）
	lab *Lab // 方便取 catalog/prime source 與共用一些 helper

	// data-plane：每個 basis 一個常駐 generator
	gens map[spec.BID]*Generator
	ids  []spec.BID // 固定順序，用於觀測/列舉（來自 cat.IDs()）

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string
}

// Sequence 依請求路由到對應的 Generator 並執行生成。
func (rt *LabRuntime) Sequence(ctx context.Context, req *dto.SequenceRequest) (dto.SequenceResult, error) {
	if err := rt.gate(ctx); err != nil {
		return dto.SequenceResult{}, err
	}

	g, err := rt.route(req)
	if err != nil {
		return dto.SequenceResult{}, err
	}
	return g.Sequence(req)
}

// Stat 依請求路由到對應的 Generator，生成並回傳統計報告。
func (rt *LabRuntime) Stat(ctx context.Context, req *dto.SequenceRequest) (*stats.SeqReport, error) {
	if err := rt.gate(ctx); err != nil {
		return nil, err
	}

	g, err := rt.route(req)
	if err != nil {
		return nil, err
	}
	if err := g.valid(req); err != nil {
		return nil, err
	}
	return g.Report(req.N)
}

// Bounded 執行 ad-hoc BoundedBasis 生成（不經 catalog）。
func (rt *LabRuntime) Bounded(ctx context.Context, req *dto.BoundedRequest) (dto.SequenceResult, error) {
	if err := rt.gate(ctx); err != nil {
		return dto.SequenceResult{}, err
	}
	if req.N < 1 || req.N > spec.DefaultMaxTerms {
		return dto.SequenceResult{}, errs.Warnf("n must be in [1, %d]", spec.DefaultMaxTerms)
	}

	// 走 runtime 的 memoized prime source，而不是 package-level 的一次性 sieve
	basis, err := rt.lab.src.UpTo(req.Bound)
	if err != nil {
		return dto.SequenceResult{}, err
	}
	var res *merge.Result
	if len(basis) == 0 {
		res, err = seedOnly(req.N)
	} else {
		res, err = merge.Generate(basis, req.N)
	}
	if err != nil {
		return dto.SequenceResult{}, err
	}
	return dto.NewSequenceResultDTO("", 0, spec.KindBounded, basis, req.N, res, req.Export)
}

// WithPrimes 執行 ad-hoc ExplicitBasis 生成（不經 catalog）。
func (rt *LabRuntime) WithPrimes(ctx context.Context, req *dto.WithPrimesRequest) (dto.SequenceResult, error) {
	if err := rt.gate(ctx); err != nil {
		return dto.SequenceResult{}, err
	}
	if req.N < 1 || req.N > spec.DefaultMaxTerms {
		return dto.SequenceResult{}, errs.Warnf("n must be in [1, %d]", spec.DefaultMaxTerms)
	}

	res, err := GenerateWithPrimes(req.Primes, req.N)
	if err != nil {
		return dto.SequenceResult{}, err
	}
	// DTO 輸出 canonical basis 而非原始輸入順序
	basis := append([]uint64(nil), req.Primes...)
	slices.Sort(basis)
	basis = slices.Compact(basis)
	return dto.NewSequenceResultDTO("", 0, spec.KindExplicit, basis, req.N, res, req.Export)
}

// Summary 列舉 catalog 目錄摘要。
func (rt *LabRuntime) Summary() ([]catalog.Summary, error) {
	return rt.lab.Summary()
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *LabRuntime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and records the reason (written once).
func (rt *LabRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
	})
}

// Closed reports whether the runtime has been closed.
func (rt *LabRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *LabRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// gate 統一處理取消與關閉語意。
func (rt *LabRuntime) gate(ctx context.Context) error {
	select {
	case <-ctx.Done():
		// 如果通知取消
		return errs.NewWarn("generate canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		// done is the source of truth; keep a fast boolean for cheap reads/telemetry.
		rt.closed.Store(true)
		return errs.NewFatal("lab runtime closed: " + rt.ClosedReason())
	default:
	}
	return nil
}

// route 依 bid（優先）或 name 找到 Generator。
func (rt *LabRuntime) route(req *dto.SequenceRequest) (*Generator, error) {
	if req.BasisID != 0 {
		g, ok := rt.gens[req.BasisID]
		if !ok {
			return nil, errs.NewWarn("basis id not found")
		}
		return g, nil
	}
	name := strings.TrimSpace(req.BasisName)
	if name == "" {
		return nil, errs.NewWarn("basis id or name required")
	}
	ent, ok := rt.lab.EntryByName(name)
	if !ok {
		return nil, errs.NewWarn("basis name not found")
	}
	g, ok := rt.gens[ent.BID]
	if !ok {
		return nil, errs.NewWarn("basis id not found")
	}
	return g, nil
}

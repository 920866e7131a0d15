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
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/smoothlab/errs"
	"github.com/zintix-labs/smoothlab/primes"
	"github.com/zintix-labs/smoothlab/sdk/merge"
	"github.com/zintix-labs/smoothlab/spec"
	"github.com/zintix-labs/smoothlab/stats"
)

const capPrepare int = 100

// Bench 用於量測 basis 的生成吞吐：重複生成同一條序列、計時並產出統計報告。
//
// 生成是確定性的純計算，rounds 之間沒有狀態：多跑幾輪的目的是
// 量測穩定的 terms/sec，順便驗證結果的一致性（任何一輪長度不同即為 bug）。
type Bench struct {
	BasisName string   // basis 名稱
	BasisID   spec.BID // basis ID
	bs        *spec.BasisSetting
	src       primes.Source
	gBuf      []*Generator // 併發執行 generator 實例
}

func newBench(bs *spec.BasisSetting, src primes.Source) (*Bench, error) {
	b := &Bench{
		BasisName: bs.BasisName,
		BasisID:   bs.BasisID,
		bs:        bs,
		src:       src,
		gBuf:      make([]*Generator, 1, capPrepare),
	}
	g, err := newGenerator(bs, src)
	if err != nil {
		return nil, err
	}
	b.gBuf[0] = g
	return b, nil
}

// Run 單線 bench：以一個 generator 連續生成指定 rounds 次，
// 回傳最後一輪的統計報告與總用時。
func (b *Bench) Run(n int, rounds int, showpb bool) (*stats.SeqReport, time.Duration, error) {
	if n < 1 || n > b.bs.MaxTerms {
		return nil, 0, errs.Warnf("n must be in [1, %d]", b.bs.MaxTerms)
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("rounds must > 0")
	}
	g := b.gBuf[0]

	bar := pb.StartNew(rounds)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	var last *merge.Result
	for i := 0; i < rounds; i++ {
		res, err := g.Generate(n)
		if err != nil {
			return nil, 0, err
		}
		if last != nil && len(res.Terms) != len(last.Terms) {
			return nil, 0, errs.NewFatal("generation is not deterministic across rounds")
		}
		last = res
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()

	rep := stats.NewSeqReport(g.basisName, g.basisID, g.kind, g.basis, n, last)
	rep.Done()
	return rep, used, nil
}

// RunMP 平行執行多個 generator，總計 rounds*mp 次生成，回傳統計報告與總用時。
//
// 每個 worker 有自己的 generator（雖然 Generate 可併發，分開建實例
// 讓 bounded basis 的 sieve memo 只付一次成本、之後各自唯讀）。
func (b *Bench) RunMP(n int, rounds int, mp int, showpb bool) (*stats.SeqReport, time.Duration, error) {
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if n < 1 || n > b.bs.MaxTerms {
		return nil, 0, errs.Warnf("n must be in [1, %d]", b.bs.MaxTerms)
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("rounds must > 0")
	}
	for len(b.gBuf) < mp {
		g, err := newGenerator(b.bs, b.src)
		if err != nil {
			return nil, 0, err
		}
		b.gBuf = append(b.gBuf, g)
	}

	results := make([]*merge.Result, mp)
	errsBuf := make([]error, mp)

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			g := b.gBuf[i]
			for r := 0; r < rounds; r++ {
				res, err := g.Generate(n)
				if err != nil {
					errsBuf[i] = err
					return
				}
				results[i] = res
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	for _, err := range errsBuf {
		if err != nil {
			return nil, 0, err
		}
	}
	// 所有 worker 產出必須一致
	for i := 1; i < mp; i++ {
		if len(results[i].Terms) != len(results[0].Terms) {
			return nil, 0, errs.NewFatal("generation is not deterministic across workers")
		}
	}

	g := b.gBuf[0]
	rep := stats.NewSeqReport(g.basisName, g.basisID, g.kind, g.basis, n, results[0])
	rep.Done()
	return rep, used, nil
}

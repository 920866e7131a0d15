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

// Package smoothlab 提供 smooth number 實驗室的「組裝入口（assembler）」與
// 「運行入口（runtime entry）」。
//
// 你可以把 Lab 視為一個「可被後端/bench 使用的 runtime」，它負責把兩個必需的
// 地基組裝在一起，並提供建立 Generator 的入口：
//  1. Catalog：basis 目錄（Single Source of Truth / SSOT），定義有哪些命名的
//     smooth number 家族、各自對應的設定檔名稱（ConfigName）。
//  2. Prime source：質數來源（sieve），bounded basis 在組裝時由它 materialize。
//
// 設計重點：
//   - Lab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - Generator 是對外提供 Generate 的最小單位；basis 在建立時就 materialize
//     完畢，之後生成是純計算，可安全併發。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Lab 建立 LabRuntime，對外提供序列生成。
//   - bench（大量重複生成做吞吐/統計分析）：由 Lab 建立 Bench。
//
// 不經 catalog 的 ad-hoc 入口（對應兩種 basis 策略）是 package-level 的
// GenerateBounded / GenerateWithPrimes。
package smoothlab

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zintix-labs/smoothlab/catalog"
	"github.com/zintix-labs/smoothlab/errs"
	"github.com/zintix-labs/smoothlab/primes"
	"github.com/zintix-labs/smoothlab/sdk/merge"
	"github.com/zintix-labs/smoothlab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 你可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
//
// Lab 不解析「路徑」：它只依賴 fs.FS + ConfigName（檔名）來取得設定內容。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是「組裝器（assembler）」與「運行入口（runtime entry）」。
//
// 使用流程通常分成兩階段：
//   - 註冊/組裝階段（registration/build）：建立 catalog、掃描設定檔、檢查重複與缺漏。
//   - 執行階段（runtime）：依據 basis ID 產生 Generator，並在 Generator 上執行 Generate。
//
// 重要設計原則：
//   - Catalog 的 ID 唯一性只保證在「同一個 Lab instance」內。
//   - 你要跑哪一批 basis、哪一套設定檔，必須由 New() 的參數明確決定。
//   - runtime 一旦開始（例如已建立 Generator 並對外服務），不得再變更 Catalog。
//
// 實務例子（概念示意）：
//
//	lab, _ := smoothlab.NewAuto(primes.NewSieve(), smoothlab.Configs(demo.FS()))
//	g, _ := lab.NewGenerator(3)
//	res, _ := g.Generate(1000)
type Lab struct {
	cat *catalog.Catalog
	src primes.Source
	sum []catalog.Summary
}

// New 建立一個 Lab instance。
//
// 這是「組裝階段（registration/build）」的入口：
//   - 會建立 Catalog（含檔名重複性檢查，避免 runtime 才爆）。
//   - 會保存 prime source，bounded basis 由它 materialize。
//
// 參數要求（是合約的一部分）：
//   - src 不能為 nil：沒有質數來源，bounded basis 無法解析。
//   - cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 BasisSetting。
func New(src primes.Source, cfgs []fs.FS) (*Lab, error) {
	if src == nil {
		return nil, errs.NewFatal("prime source required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	lab := &Lab{
		cat: cata,
		src: src,
	}
	return lab, nil
}

// NewAuto 建立一個直接進入執行階段的 Lab instance。
func NewAuto(src primes.Source, cfgs []fs.FS) (*Lab, error) {
	lab, err := New(src, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll
//
// 會掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）
// 嘗試解析成 *spec.BasisSetting，並用設定檔內宣告的 BasisID/BasisName 產生對應的
// catalog.Entry 來批次註冊。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error
//     （不會忽略、也不會繼續掃完）。
//  2. 原子性：只有當「全部檔案」都成功解析並通過基本檢查時，才會呼叫
//     Register(...) 一次性寫入。因此不會出現只註冊了一半、導致 catalog 處於
//     半完成狀態的情況。
//  3. 穩定性：fs.WalkDir 依檔名排序處理，確保行為 determinism。
//
// bounded basis 會在這裡先透過 prime source 試解析一次，確保 runtime 建
// Generator 時不會才發現 bound 解不出來。
func (l *Lab) RegisterAll() error {
	cfgs := l.cat.Cfg()
	sources := cfgs.Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 64)
	seenID := map[spec.BID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}

			base := filepath.Base(path)
			if strings.Contains(path, "/") && path != base {
				return errs.NewFatal(fmt.Sprintf("configs must be flat (nested path): %q", path))
			}
			if strings.HasPrefix(base, ".") {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}

			var (
				bs   *spec.BasisSetting
				berr error
			)
			switch ext {
			case ".yaml", ".yml":
				bs, berr = spec.GetBasisSettingByYAML(raw)
			case ".json":
				bs, berr = spec.GetBasisSettingByJSON(raw)
			default:
				return errs.NewFatal(fmt.Sprintf("unsupported config format: %q", base))
			}
			if berr != nil {
				return errs.NewFatal(fmt.Sprintf("parse basis setting failed: %s (%v)", base, berr))
			}

			name := strings.TrimSpace(bs.BasisName)
			if name == "" {
				return errs.NewFatal(fmt.Sprintf("basis name required: %s", base))
			}

			id := bs.BasisID
			if prev, ok := seenID[id]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate basis id: %d (config=%s and %s)", id, prev, base))
			}
			if _, ok := l.cat.GetByID(id); ok {
				return errs.NewFatal(fmt.Sprintf("basis id already registered: %d (config=%s)", id, base))
			}
			seenID[id] = base

			nameKey := strings.ToLower(name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate basis name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := l.cat.GetByName(name); ok {
				return errs.NewFatal(fmt.Sprintf("basis name already registered: %s (config=%s)", name, base))
			}
			seenName[nameKey] = base

			if bs.Kind == spec.KindBounded {
				if _, perr := l.src.UpTo(bs.Bound); perr != nil {
					return errs.Wrap(perr, fmt.Sprintf("resolve bounded basis failed: %s", base))
				}
			}

			entries = append(entries, catalog.Entry{
				BID:        id,
				Name:       name,
				ConfigName: base,
			})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	return l.cat.Register(entries...)
}

func (l *Lab) Freeze() {
	l.cat.Freeze()
}

func (l *Lab) EntryById(id spec.BID) (catalog.Entry, bool) {
	return l.cat.GetByID(id)
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

func (l *Lab) IDs() []spec.BID {
	return l.cat.IDs()
}

func (l *Lab) All() []catalog.Entry {
	return l.cat.All()
}

func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if l.sum != nil {
		return l.sum, nil
	}
	ids := l.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		bs, err := l.cat.BasisSettingById(id)
		if err != nil {
			return nil, errs.NewFatal("parse basis setting failed")
		}
		s := catalog.Summary{
			BID:      id,
			Name:     bs.BasisName,
			Kind:     bs.Kind,
			Bound:    bs.Bound,
			Primes:   bs.Primes,
			MaxTerms: bs.MaxTerms,
			Note:     bs.Note,
		}
		cs = append(cs, s)
	}
	l.sum = cs
	return l.sum, nil
}

// NewGenerator 依據 Catalog 內的 basis ID 建立一個 Generator。
//
// 行為：
//  1. 由 Catalog 取得對應的 BasisSetting（通常來自 fs.FS 內的 YAML/JSON）。
//  2. materialize basis：bounded → 以 prime source 解出所有 ≤ bound 的質數；
//     explicit → 直接取用設定檔內的 canonical 質數集合。
//
// Generator 建立後不再依賴 Lab，可安全併發使用。
func (l *Lab) NewGenerator(id spec.BID) (*Generator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	bs, err := l.cat.BasisSettingById(id)
	if err != nil {
		return nil, err
	}
	return newGenerator(bs, l.src)
}

// NewGeneratorByName 與 NewGenerator 相同，但以 basis 名稱定位（大小寫不敏感）。
func (l *Lab) NewGeneratorByName(name string) (*Generator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	bs, err := l.cat.BasisSettingByName(name)
	if err != nil {
		return nil, err
	}
	return newGenerator(bs, l.src)
}

// NewGeneratorByYAML 以 catalog 外帶入的 YAML 設定建立 Generator。
//
// 設定檔內宣告的 BasisID/BasisName 必須已存在於 catalog 且互相對應
// （防止外帶設定冒用別的 basis 身分）。
func (l *Lab) NewGeneratorByYAML(raw []byte) (*Generator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	bs, err := spec.GetBasisSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(bs); err != nil {
		return nil, err
	}
	return newGenerator(bs, l.src)
}

// NewGeneratorByJSON 以 catalog 外帶入的 JSON 設定建立 Generator。
func (l *Lab) NewGeneratorByJSON(raw []byte) (*Generator, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	bs, err := spec.GetBasisSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := l.validCfg(bs); err != nil {
		return nil, err
	}
	return newGenerator(bs, l.src)
}

func (l *Lab) validCfg(bs *spec.BasisSetting) error {
	ent, ok := l.cat.GetByID(bs.BasisID)
	if !ok {
		return errs.NewWarn("bid not exist")
	}
	ent2, ok := l.cat.GetByName(bs.BasisName)
	if !ok {
		return errs.NewWarn("basis name not exist")
	}
	if ent.BID != ent2.BID {
		return errs.NewWarn("basis id is not matched basis name")
	}
	return nil
}

func (l *Lab) NewBench(id spec.BID) (*Bench, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	bs, err := l.cat.BasisSettingById(id)
	if err != nil {
		return nil, err
	}
	return newBench(bs, l.src)
}

func (l *Lab) BuildRuntime() (*LabRuntime, error) {
	// 進入 runtime 前，catalog 必須 Freeze
	l.Freeze()

	ids := l.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no basis registered")
	}

	rt := &LabRuntime{
		lab:  l,
		gens: make(map[spec.BID]*Generator, len(ids)),
		ids:  ids,
		done: make(chan struct{}),
	}
	rt.reason.Store("")

	// 先全建好（fail-fast）
	for _, id := range ids {
		g, err := l.NewGenerator(id)
		if err != nil {
			return nil, err
		}
		rt.gens[id] = g
	}
	return rt, nil
}

// ============================================================
// ** Ad-hoc 策略入口（不經 catalog）**
// ============================================================

// GenerateBounded 產生最小的 n 個 k-smooth number（BoundedBasis 策略）。
//
// basis = 所有 ≤ k 的質數（inclusive：k 是質數時 k 本身入列）。
// k < 2 時 basis 為空，此時唯一的 smooth number 是 1：
//   - n == 1 → [1]，complete。
//   - n > 1  → [1]，truncated（不碰引擎，引擎合約要求 m ≥ 1）。
func GenerateBounded(k uint64, n int) (*merge.Result, error) {
	basis, err := primes.UpTo(k)
	if err != nil {
		return nil, err
	}
	if len(basis) == 0 {
		return seedOnly(n)
	}
	return merge.Generate(basis, n)
}

// GenerateWithPrimes 產生最小的 n 個 ps-smooth number（ExplicitBasis 策略）。
//
// ps 不可為空；每個元素都必須是質數，否則回傳 Warn 等級錯誤。
// 輸入順序不拘、允許重複：內部會正規化成 canonical 升冪去重的 basis，
// 輸出只由「集合」決定。
func GenerateWithPrimes(ps []uint64, n int) (*merge.Result, error) {
	if len(ps) == 0 {
		return nil, merge.ErrEmptyBasis
	}
	if len(ps) > spec.MaxBasisPrimes {
		return nil, errs.Warnf("more than %d primes", spec.MaxBasisPrimes)
	}
	for _, p := range ps {
		if !primes.IsPrime(p) {
			return nil, errs.Warnf("%d is not prime", p)
		}
	}
	basis := append([]uint64(nil), ps...)
	slices.Sort(basis)
	basis = slices.Compact(basis)
	return merge.Generate(basis, n)
}

// seedOnly 處理空 basis 的短路輸出。
func seedOnly(n int) (*merge.Result, error) {
	if n < 1 {
		return nil, merge.ErrBadCount
	}
	st := merge.StatusComplete
	if n > 1 {
		st = merge.StatusTruncated
	}
	return &merge.Result{Terms: []uint64{1}, Status: st}, nil
}

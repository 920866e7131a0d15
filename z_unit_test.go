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
	"errors"
	"io/fs"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/smoothlab/dto"
	"github.com/zintix-labs/smoothlab/primes"
	"github.com/zintix-labs/smoothlab/sdk/merge"
)

func testConfigs() fs.FS {
	return fstest.MapFS{
		"pratt.yaml": &fstest.MapFile{Data: []byte(
			"basis_name: pratt\nbasis_id: 2\nkind: explicit\nprimes: [2, 3]\n",
		)},
		"hamming.yaml": &fstest.MapFile{Data: []byte(
			"basis_name: hamming\nbasis_id: 3\nkind: bounded\nbound: 5\nmax_terms: 100000\n",
		)},
		"trivial.yaml": &fstest.MapFile{Data: []byte(
			"basis_name: trivial\nbasis_id: 9\nkind: bounded\nbound: 1\n",
		)},
	}
}

func newTestLab(t *testing.T) *Lab {
	t.Helper()
	lab, err := NewAuto(primes.NewSieve(), Configs(testConfigs()))
	if err != nil {
		t.Fatalf("NewAuto: %v", err)
	}
	return lab
}

func TestGenerateBoundedKnownPrefix(t *testing.T) {
	res, err := GenerateBounded(5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{1, 2, 3, 4, 5, 6, 8, 9, 10, 12}
	if !slices.Equal(res.Terms, want) {
		t.Fatalf("terms = %v, want %v", res.Terms, want)
	}
	if res.Status != merge.StatusComplete {
		t.Fatalf("status = %v", res.Status)
	}
}

func TestGenerateBoundedInclusive(t *testing.T) {
	// bound 本身是質數時要入列：7-smooth 含 7
	res, err := GenerateBounded(7, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Contains(res.Terms, 7) {
		t.Fatalf("7 missing from 7-smooth prefix: %v", res.Terms)
	}
}

func TestGenerateBoundedTrivial(t *testing.T) {
	// k < 2：唯一的 smooth number 是 1
	res, err := GenerateBounded(1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(res.Terms, []uint64{1}) || res.Status != merge.StatusComplete {
		t.Fatalf("unexpected result: %+v", res)
	}

	res, err = GenerateBounded(0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(res.Terms, []uint64{1}) || res.Status != merge.StatusTruncated {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestGenerateBoundedPowersOfTwo(t *testing.T) {
	// 2-smooth：2^63 是第 64 項，第 65 項溢位截斷
	res, err := GenerateBounded(2, 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Terms) != 64 || res.Status != merge.StatusComplete {
		t.Fatalf("len=%d status=%v", len(res.Terms), res.Status)
	}
	if res.Last() != 1<<63 {
		t.Fatalf("last = %d", res.Last())
	}

	res, err = GenerateBounded(2, 65)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Terms) != 64 || res.Status != merge.StatusTruncated {
		t.Fatalf("len=%d status=%v", len(res.Terms), res.Status)
	}
}

func TestGenerateBoundedTooLarge(t *testing.T) {
	if _, err := GenerateBounded(primes.MaxBound+1, 10); err == nil {
		t.Fatalf("expected bound guard error")
	}
}

func TestGenerateWithPrimesOrderIndependent(t *testing.T) {
	a, err := GenerateWithPrimes([]uint64{5, 2}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GenerateWithPrimes([]uint64{2, 5, 5, 2}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{1, 2, 4, 5, 8, 10, 16, 20, 25, 32}
	if !slices.Equal(a.Terms, want) || !slices.Equal(b.Terms, want) {
		t.Fatalf("a=%v b=%v want=%v", a.Terms, b.Terms, want)
	}
}

func TestGenerateWithPrimesRejectsComposite(t *testing.T) {
	cases := [][]uint64{
		{4},
		{2, 3, 9},
		{1},
		{0},
	}
	for _, ps := range cases {
		if _, err := GenerateWithPrimes(ps, 10); err == nil {
			t.Errorf("expected error for %v", ps)
		}
	}
	if _, err := GenerateWithPrimes(nil, 10); !errors.Is(err, merge.ErrEmptyBasis) {
		t.Fatalf("expected ErrEmptyBasis, got %v", err)
	}
}

func TestGenerateWithPrimesThreeSmoothBoundary(t *testing.T) {
	// {2,3} 的 64-bit 邊界：第 1344 項是最後一個可表示的項
	res, err := GenerateWithPrimes([]uint64{2, 3}, 1344)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != merge.StatusComplete {
		t.Fatalf("status = %v", res.Status)
	}
	if res.Terms[1342] != 17748888853923495936 {
		t.Fatalf("term#1343 = %d", res.Terms[1342])
	}
	if res.Last() != 17991041643939889152 {
		t.Fatalf("term#1344 = %d", res.Last())
	}

	res, err = GenerateWithPrimes([]uint64{2, 3}, 1345)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Terms) != 1344 || res.Status != merge.StatusTruncated {
		t.Fatalf("len=%d status=%v", len(res.Terms), res.Status)
	}
}

func TestLabRegisterAllAndSummary(t *testing.T) {
	lab := newTestLab(t)
	sum, err := lab.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(sum) != 3 {
		t.Fatalf("summary len = %d", len(sum))
	}
	ent, ok := lab.EntryByName("HAMMING")
	if !ok || ent.BID != 3 {
		t.Fatalf("case-insensitive lookup failed: %+v ok=%v", ent, ok)
	}
}

func TestLabGenerator(t *testing.T) {
	lab := newTestLab(t)

	g, err := lab.NewGenerator(3)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if !slices.Equal(g.Basis(), []uint64{2, 3, 5}) {
		t.Fatalf("materialized basis = %v", g.Basis())
	}
	res, err := g.Generate(10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !slices.Equal(res.Terms, []uint64{1, 2, 3, 4, 5, 6, 8, 9, 10, 12}) {
		t.Fatalf("terms = %v", res.Terms)
	}

	if _, err := g.Generate(100001); err == nil {
		t.Fatalf("expected max_terms guard")
	}
	if _, err := g.Generate(0); err == nil {
		t.Fatalf("expected bad count guard")
	}
}

func TestLabGeneratorTrivialBasis(t *testing.T) {
	lab := newTestLab(t)
	g, err := lab.NewGenerator(9)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	res, err := g.Generate(3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !slices.Equal(res.Terms, []uint64{1}) || res.Status != merge.StatusTruncated {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestGeneratorReport(t *testing.T) {
	lab := newTestLab(t)
	g, err := lab.NewGenerator(2)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	rep, err := g.Report(100)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.Summary.Produced != 100 || rep.Summary.BasisName != "pratt" {
		t.Fatalf("unexpected report: %+v", rep.Summary)
	}
	if rep.Growth.MeanRatio <= 1.0 {
		t.Fatalf("growth not computed: %+v", rep.Growth)
	}
}

func TestBenchRun(t *testing.T) {
	lab := newTestLab(t)
	b, err := lab.NewBench(2)
	if err != nil {
		t.Fatalf("NewBench: %v", err)
	}
	rep, used, err := b.Run(500, 3, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Summary.Produced != 500 || used <= 0 {
		t.Fatalf("unexpected bench result: produced=%d used=%v", rep.Summary.Produced, used)
	}
}

func TestBenchRunMP(t *testing.T) {
	lab := newTestLab(t)
	b, err := lab.NewBench(3)
	if err != nil {
		t.Fatalf("NewBench: %v", err)
	}
	rep, _, err := b.RunMP(200, 2, 4, false)
	if err != nil {
		t.Fatalf("RunMP: %v", err)
	}
	if rep.Summary.Produced != 200 {
		t.Fatalf("produced = %d", rep.Summary.Produced)
	}
}

func TestRuntimeSequence(t *testing.T) {
	lab := newTestLab(t)
	rt, err := lab.BuildRuntime()
	if err != nil {
		t.Fatalf("BuildRuntime: %v", err)
	}
	defer rt.Close()

	out, err := rt.Sequence(context.Background(), &dto.SequenceRequest{BasisID: 3, N: 10})
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if out.Produced != 10 || out.Status != "complete" {
		t.Fatalf("unexpected result: %+v", out)
	}

	out, err = rt.Sequence(context.Background(), &dto.SequenceRequest{BasisName: "pratt", N: 5})
	if err != nil {
		t.Fatalf("Sequence by name: %v", err)
	}
	if !slices.Equal(out.Terms, []uint64{1, 2, 3, 4, 6}) {
		t.Fatalf("terms = %v", out.Terms)
	}

	if _, err := rt.Sequence(context.Background(), &dto.SequenceRequest{BasisID: 999, N: 5}); err == nil {
		t.Fatalf("expected unknown bid error")
	}
	if _, err := rt.Sequence(context.Background(), &dto.SequenceRequest{N: 5}); err == nil {
		t.Fatalf("expected missing route error")
	}
}

func TestRuntimeAdhoc(t *testing.T) {
	lab := newTestLab(t)
	rt, err := lab.BuildRuntime()
	if err != nil {
		t.Fatalf("BuildRuntime: %v", err)
	}
	defer rt.Close()

	out, err := rt.Bounded(context.Background(), &dto.BoundedRequest{Bound: 2, N: 65})
	if err != nil {
		t.Fatalf("Bounded: %v", err)
	}
	if out.Produced != 64 || !out.Truncated {
		t.Fatalf("unexpected bounded result: %+v", out)
	}

	out, err = rt.WithPrimes(context.Background(), &dto.WithPrimesRequest{Primes: []uint64{5, 2}, N: 10})
	if err != nil {
		t.Fatalf("WithPrimes: %v", err)
	}
	if !slices.Equal(out.Primes, []uint64{2, 5}) {
		t.Fatalf("canonical basis = %v", out.Primes)
	}
}

func TestRuntimeClose(t *testing.T) {
	lab := newTestLab(t)
	rt, err := lab.BuildRuntime()
	if err != nil {
		t.Fatalf("BuildRuntime: %v", err)
	}

	rt.Close()
	rt.Close() // idempotent
	if !rt.Closed() || rt.ClosedReason() != "closed" {
		t.Fatalf("closed=%v reason=%q", rt.Closed(), rt.ClosedReason())
	}
	if _, err := rt.Sequence(context.Background(), &dto.SequenceRequest{BasisID: 3, N: 10}); err == nil {
		t.Fatalf("expected closed error")
	}
}

func TestRuntimeContextCanceled(t *testing.T) {
	lab := newTestLab(t)
	rt, err := lab.BuildRuntime()
	if err != nil {
		t.Fatalf("BuildRuntime: %v", err)
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rt.Sequence(ctx, &dto.SequenceRequest{BasisID: 3, N: 10}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

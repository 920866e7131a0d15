package stats

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/smoothlab/sdk/merge"
	"github.com/zintix-labs/smoothlab/spec"
)

func mustResult(t *testing.T, basis []uint64, n int) *merge.Result {
	t.Helper()
	res, err := merge.Generate(basis, n)
	if err != nil {
		t.Fatalf("Generate(%v, %d): %v", basis, n, err)
	}
	return res
}

func TestDecadeBucketsIndex(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{1, 0},
		{9, 0},
		{10, 1},
		{99, 1},
		{100, 2},
		{999, 2},
		{1_000_000, 6},
		{9_999_999_999_999_999_999, 18},
		{10_000_000_000_000_000_000, 19},
		{math.MaxUint64, 19},
	}
	for _, c := range cases {
		if got := Buckets.Index(c.v); got != c.want {
			t.Errorf("Index(%d) = %d, want %d", c.v, got, c.want)
		}
	}
	if len(Buckets.Labels()) != Buckets.Len() {
		t.Fatalf("labels/len mismatch")
	}
}

func TestSeqReportSummary(t *testing.T) {
	res := mustResult(t, []uint64{2, 3, 5}, 10)
	r := NewSeqReport("hamming", 3, spec.KindExplicit, []uint64{2, 3, 5}, 10, res)
	r.Done()

	if r.Summary.Produced != 10 || r.Summary.Requested != 10 {
		t.Fatalf("produced=%d requested=%d", r.Summary.Produced, r.Summary.Requested)
	}
	if r.Summary.First != 1 || r.Summary.Last != 12 {
		t.Fatalf("first=%d last=%d", r.Summary.First, r.Summary.Last)
	}
	if r.Summary.Status != "complete" {
		t.Fatalf("status=%q", r.Summary.Status)
	}
}

func TestSeqReportDist(t *testing.T) {
	// 1..10 的前十個 5-smooth: 1,2,3,4,5,6,8,9,10,12
	// [1,10): 8 個, [10,100): 2 個
	res := mustResult(t, []uint64{2, 3, 5}, 10)
	r := NewSeqReport("hamming", 3, spec.KindExplicit, []uint64{2, 3, 5}, 10, res)
	r.Done()

	if r.Dist.Collect[0] != 8 || r.Dist.Collect[1] != 2 {
		t.Fatalf("collect=%v", r.Dist.Collect[:3])
	}
	if got := r.Dist.Dist[0]; math.Abs(got-0.8) > 1e-12 {
		t.Fatalf("dist[0]=%v", got)
	}
	sum := 0.0
	for _, d := range r.Dist.Dist {
		sum += d
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("dist sum=%v", sum)
	}
}

func TestSeqReportGrowthPowersOfTwo(t *testing.T) {
	// 單質數序列的相鄰比值恆為 2
	res := mustResult(t, []uint64{2}, 20)
	r := NewSeqReport("pow2", 1, spec.KindExplicit, []uint64{2}, 20, res)
	r.Done()

	if math.Abs(r.Growth.MeanRatio-2.0) > 1e-9 {
		t.Fatalf("mean ratio=%v", r.Growth.MeanRatio)
	}
	if r.Growth.StdRatio > 1e-9 {
		t.Fatalf("std ratio=%v", r.Growth.StdRatio)
	}
	want := math.Log(2)
	if math.Abs(r.Growth.MeanLogRatio-want) > 1e-9 {
		t.Fatalf("mean log ratio=%v", r.Growth.MeanLogRatio)
	}
	// 零變異時 CI 收斂到點
	if math.Abs(r.Growth.LogRatioCI.Lo-want) > 1e-6 || math.Abs(r.Growth.LogRatioCI.Hi-want) > 1e-6 {
		t.Fatalf("ci=%+v", r.Growth.LogRatioCI)
	}
}

func TestSeqReportGrowthCI(t *testing.T) {
	res := mustResult(t, []uint64{2, 3}, 100)
	r := NewSeqReport("pratt", 2, spec.KindExplicit, []uint64{2, 3}, 100, res)
	r.Done()

	g := r.Growth
	if g.LogRatioCI.Lo > g.MeanLogRatio || g.MeanLogRatio > g.LogRatioCI.Hi {
		t.Fatalf("CI does not cover mean: %+v mean=%v", g.LogRatioCI, g.MeanLogRatio)
	}
	if !(g.RatioP10 <= g.RatioP50 && g.RatioP50 <= g.RatioP90) {
		t.Fatalf("quantiles out of order: %v %v %v", g.RatioP10, g.RatioP50, g.RatioP90)
	}
	if g.MeanRatio <= 1.0 {
		t.Fatalf("mean ratio=%v", g.MeanRatio)
	}
}

func TestSeqReportDoneIdempotent(t *testing.T) {
	res := mustResult(t, []uint64{2, 3}, 50)
	r := NewSeqReport("pratt", 2, spec.KindExplicit, []uint64{2, 3}, 50, res)
	r.Done()
	mean := r.Growth.MeanLogRatio
	r.Done()
	if r.Growth.MeanLogRatio != mean {
		t.Fatalf("Done not idempotent")
	}
}

func TestJsonRender(t *testing.T) {
	res := mustResult(t, []uint64{2, 5}, 10)
	r := NewSeqReport("two-five", 4, spec.KindExplicit, []uint64{2, 5}, 10, res)

	var buf bytes.Buffer
	if err := r.WriteWith(&buf, &JsonSeqReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := back["Summary"]; !ok {
		t.Fatalf("missing Summary: %v", back)
	}
	if _, ok := back["Growth"]; !ok {
		t.Fatalf("missing Growth: %v", back)
	}
}

func TestYAMLRenderFlowStyle(t *testing.T) {
	res := mustResult(t, []uint64{2, 3, 5}, 10)
	r := NewSeqReport("hamming", 3, spec.KindExplicit, []uint64{2, 3, 5}, 10, res)

	var buf bytes.Buffer
	if err := r.WriteWith(&buf, &YAMLSeqReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	out := buf.String()
	// 一維陣列應為 flow style
	if !strings.Contains(out, "Primes: [2, 3, 5]") {
		t.Fatalf("expected flow style primes, got:\n%s", out)
	}
}

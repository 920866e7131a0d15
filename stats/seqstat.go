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

package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/smoothlab/sdk/merge"
	"github.com/zintix-labs/smoothlab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// SeqReport 序列統計報告
type SeqReport struct {
	Summary *SummaryReport `json:"Summary"`
	Growth  *GrowthReport  `json:"Growth"`
	Dist    *DistReport    `json:"Dist"`
	isDone  bool
}

type SummaryReport struct {
	BasisName string    `json:"BasisName"`
	BasisID   spec.BID  `json:"BasisID"`
	Kind      string    `json:"Kind"`
	Primes    []uint64  `json:"Primes"`
	Requested int       `json:"Requested"`
	Produced  int       `json:"Produced"`
	Status    string    `json:"Status"`
	First     uint64    `json:"First"`
	Last      uint64    `json:"Last"`
	logRatios []float64 // 暫存相鄰項 log 比值，Done() 後清空
}

// GrowthReport 成長率統計
//
// 平滑數序列的相鄰比值 terms[i+1]/terms[i] 收斂緩慢，
// 用 log 比值的樣本統計描述序列的漸進成長速度。
type GrowthReport struct {
	MeanRatio    float64 `json:"MeanRatio"`
	StdRatio     float64 `json:"StdRatio"`
	MeanLogRatio float64 `json:"MeanLogRatio"`
	LogRatioCI   CI      `json:"LogRatioCI"`
	RatioP10     float64 `json:"RatioP10"`
	RatioP50     float64 `json:"RatioP50"`
	RatioP90     float64 `json:"RatioP90"`
}

// DistReport 量級分布統計（十進位分桶）
type DistReport struct {
	Bucket  []string  `json:"Bucket"`
	Collect []int     `json:"Collect"`
	Dist    []float64 `json:"Dist"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// NewSeqReport 從一次生成結果建立報告。
//
// 分桶計數在建構時完成；成長率統計延遲到 Done() 一次性計算。
func NewSeqReport(name string, bid spec.BID, kind spec.BasisKind, primes []uint64, requested int, res *merge.Result) *SeqReport {
	r := &SeqReport{
		Summary: &SummaryReport{
			BasisName: name,
			BasisID:   bid,
			Kind:      string(kind),
			Primes:    append([]uint64(nil), primes...),
			Requested: requested,
			Produced:  len(res.Terms),
			Status:    res.Status.String(),
		},
		Growth: &GrowthReport{},
		Dist: &DistReport{
			Bucket:  Buckets.Labels(),
			Collect: make([]int, Buckets.Len()),
			Dist:    make([]float64, Buckets.Len()),
		},
	}
	if len(res.Terms) > 0 {
		r.Summary.First = res.Terms[0]
		r.Summary.Last = res.Terms[len(res.Terms)-1]
	}
	for _, v := range res.Terms {
		r.Dist.Collect[Buckets.Index(v)]++
	}
	if len(res.Terms) > 1 {
		r.Summary.logRatios = make([]float64, 0, len(res.Terms)-1)
		for i := 1; i < len(res.Terms); i++ {
			lr := math.Log(float64(res.Terms[i])) - math.Log(float64(res.Terms[i-1]))
			r.Summary.logRatios = append(r.Summary.logRatios, lr)
		}
	}
	return r
}

// Done 將累積資料轉換為最終統計結果並鎖定 isDone 標記。
//
// 成長率、分位數與分布占比都在這裡一次性計算，
// 請在輸出報告前呼叫。
func (s *SeqReport) Done() {
	if s.isDone {
		return
	}

	// Growth
	if n := len(s.Summary.logRatios); n > 0 {
		logs := s.Summary.logRatios
		ratios := make([]float64, n)
		for i, lr := range logs {
			ratios[i] = math.Exp(lr)
		}
		s.Growth.MeanRatio = stat.Mean(ratios, nil)
		if n > 1 {
			s.Growth.StdRatio = stat.StdDev(ratios, nil)
		}
		s.Growth.MeanLogRatio = stat.Mean(logs, nil)
		s.Growth.LogRatioCI = logRatioCI(logs, 0.95)

		sort.Float64s(ratios)
		s.Growth.RatioP10 = stat.Quantile(0.10, stat.Empirical, ratios, nil)
		s.Growth.RatioP50 = stat.Quantile(0.50, stat.Empirical, ratios, nil)
		s.Growth.RatioP90 = stat.Quantile(0.90, stat.Empirical, ratios, nil)
	}
	s.Summary.logRatios = nil

	// Dist
	if s.Summary.Produced > 0 {
		total := float64(s.Summary.Produced)
		for i, c := range s.Dist.Collect {
			s.Dist.Dist[i] = float64(c) / total
		}
	}

	s.isDone = true
}

func (s *SeqReport) WriteWith(w io.Writer, rep SeqReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *SeqReport) StdOut(ut time.Duration) {
	s.Done()
	formatDuration(ut, s.Summary.Produced)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.BasisName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

// logRatioCI 回傳 log 比值平均的信賴區間（Student-t）
func logRatioCI(logs []float64, confidence float64) CI {
	n := len(logs)
	mean := stat.Mean(logs, nil)
	if n < 2 {
		return CI{Lo: mean, Hi: mean}
	}
	sd := stat.StdDev(logs, nil)
	se := sd / math.Sqrt(float64(n))
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	q := t.Quantile(1 - (1-confidence)/2)
	return CI{Lo: mean - q*se, Hi: mean + q*se}
}

func formatDuration(d time.Duration, terms int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	tps := int(float64(terms) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ntps : %d terms/sec\n", sec, tps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\ntps : %d terms/sec\n", m, s, tps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ntps : %d terms/sec\n", h, m, s, tps)
}

// StdOut

func (s *SeqReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Basis Name":     p.Sprintf("%s", s.Summary.BasisName),
		"Basis ID":       fmt.Sprintf("%d", s.Summary.BasisID),
		"Kind":           s.Summary.Kind,
		"Primes":         fmtPrimes(s.Summary.Primes),
		"Requested":      p.Sprintf("%d", s.Summary.Requested),
		"Produced":       p.Sprintf("%d", s.Summary.Produced),
		"Status":         s.Summary.Status,
		"First Term":     p.Sprintf("%d", s.Summary.First),
		"Last Term":      p.Sprintf("%d", s.Summary.Last),
		"Mean Ratio":     p.Sprintf("%.6f", s.Growth.MeanRatio),
		"Ratio STD":      p.Sprintf("%.6f", s.Growth.StdRatio),
		"MeanLog 95% CI": p.Sprintf("[%.6f,%.6f]", s.Growth.LogRatioCI.Lo, s.Growth.LogRatioCI.Hi),
		"Ratio P50":      p.Sprintf("%.6f", s.Growth.RatioP50),
	}
	keys := []string{"Basis Name", "Basis ID", "Kind", "Primes", "Requested", "Produced", "Status", "First Term", "Last Term", "Mean Ratio", "Ratio STD", "MeanLog 95% CI", "Ratio P50"}
	return keys, basic
}

func fmtPrimes(ps []uint64) string {
	if len(ps) == 0 {
		return "-"
	}
	sb := strings.Builder{}
	for i, v := range ps {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", v)
	}
	return sb.String()
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}

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

// DecadeBuckets
//
// 用來快速定位序列項 -> DistReport 位置 O(digits)
//
// 請勿修改預設值
//   - 區間: 十進位量級 [1,10), [10,100), ..., [1e19,+inf)
//     uint64 最大值 ≈ 1.84e19，最後一桶收尾。
type DecadeBuckets struct {
	labels []string
}

var Buckets *DecadeBuckets = &DecadeBuckets{
	labels: []string{
		"[1,10)", "[10,100)", "[100,1e3)", "[1e3,1e4)", "[1e4,1e5)",
		"[1e5,1e6)", "[1e6,1e7)", "[1e7,1e8)", "[1e8,1e9)", "[1e9,1e10)",
		"[1e10,1e11)", "[1e11,1e12)", "[1e12,1e13)", "[1e13,1e14)", "[1e14,1e15)",
		"[1e15,1e16)", "[1e16,1e17)", "[1e17,1e18)", "[1e18,1e19)", "[1e19,+inf)",
	},
}

// Labels 回傳桶標籤（與 DistReport 的 Collect/Dist 對齊）。
func (b *DecadeBuckets) Labels() []string {
	return append([]string(nil), b.labels...)
}

// Len 回傳桶數。
func (b *DecadeBuckets) Len() int { return len(b.labels) }

// Index 回傳 v 所屬的桶位。v ≥ 1（序列從 1 開始）。
func (b *DecadeBuckets) Index(v uint64) int {
	idx := 0
	for v >= 10 && idx < len(b.labels)-1 {
		v /= 10
		idx++
	}
	return idx
}

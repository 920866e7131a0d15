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

package v1

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/zintix-labs/smoothlab/dto"
	"github.com/zintix-labs/smoothlab/seqfmt"
	"github.com/zintix-labs/smoothlab/server/httperr"
)

// Export 以 wire 格式輸出序列本體（不含 JSON 包裝）：
//   - 預設：length-framed delta payload（application/octet-stream）
//   - fmt=b64u：同一 payload 的 base64url 文字
func (c *SeqHandler) Export(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeSequenceRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// 這條路由永遠要拿到原始 terms，再由 fmt 決定輸出形態
	req.Export = false

	ctx := q.Context()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := c.rt.Sequence(ctx, req)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	switch q.URL.Query().Get("fmt") {
	case "", "bin":
		w.Header().Set("Content-Type", "application/octet-stream")
		if err := seqfmt.WriteTerms(w, result.Terms); err != nil {
			httperr.Errs(w, err)
			return
		}
	case "b64u":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		s := seqfmt.EncodeBase64URL(seqfmt.EncodeTerms(result.Terms))
		if _, err := io.WriteString(w, s); err != nil {
			httperr.Errs(w, err)
			return
		}
	default:
		http.Error(w, "unknown fmt", http.StatusBadRequest)
		return
	}
}

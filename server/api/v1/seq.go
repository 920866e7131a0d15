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
	"encoding/json"
	"net/http"
	"time"

	"github.com/zintix-labs/smoothlab"
	"github.com/zintix-labs/smoothlab/dto"
	"github.com/zintix-labs/smoothlab/errs"
	"github.com/zintix-labs/smoothlab/server/httperr"
	"github.com/zintix-labs/smoothlab/server/svrcfg"
)

func (c *SeqHandler) Sequence(w http.ResponseWriter, q *http.Request) {
	// 請求方法、結構體校驗
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeSequenceRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// 請求解析完成，設置超時 context
	ctx := q.Context()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// 開始生成
	result, err := c.rt.Sequence(ctx, req)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// ============================================================
// ** SeqHandler **
// ============================================================

type SeqHandler struct {
	rt *smoothlab.LabRuntime
}

func NewSeqHandler(sCfg *svrcfg.SvrCfg) (*SeqHandler, error) {
	rt, err := sCfg.Lab.BuildRuntime()
	if err != nil {
		return nil, errs.Wrap(err, "build seq handler error")
	}
	return &SeqHandler{rt: rt}, nil
}

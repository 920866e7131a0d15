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

package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/smoothlab/errs"
	"github.com/zintix-labs/smoothlab/spec"
)

// 防止 body 過大（預設 1MiB）
const maxBody = 1 << 20

// SequenceRequest 指定 catalog 內的 basis 生成序列。
//
// basis 的定位規則：
//   - bid > 0 時以 bid 為準，basis 名稱忽略。
//   - 否則以 basis 名稱（大小寫不敏感）定位。
type SequenceRequest struct {
	BasisName string   `json:"basis,omitempty"`  // basis 名稱
	BasisID   spec.BID `json:"bid,omitempty"`    // basis 編號
	N         int      `json:"n"`                // 請求項數
	Export    bool     `json:"export,omitempty"` // true 時回傳 delta 編碼 payload 而非 terms 陣列
}

// BoundedRequest 以 ad-hoc smoothness bound 生成序列（不經 catalog）。
type BoundedRequest struct {
	Bound  uint64 `json:"bound"`            // inclusive bound；所有 ≤ bound 的質數構成 basis
	N      int    `json:"n"`                // 請求項數
	Export bool   `json:"export,omitempty"` //
}

// WithPrimesRequest 以 ad-hoc 質數集合生成序列（不經 catalog）。
type WithPrimesRequest struct {
	Primes []uint64 `json:"primes"`           // 質數集合，順序不拘
	N      int      `json:"n"`                // 請求項數
	Export bool     `json:"export,omitempty"` //
}

// DecodeSequenceRequest 會把 HTTP 請求解碼成 SequenceRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（basis/bid/n/export）。
//   - POST：從 JSON body 反序列化。
//
// 這裡只負責「解碼（decode）」與基本型別轉換，不做任何合法性校驗；
// 合法性（例如該 bid 是否存在、n 是否超過 max_terms）應由上層（Generator）決定。
func DecodeSequenceRequest(r *http.Request) (*SequenceRequest, error) {
	req := &SequenceRequest{}

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.BasisName = q.Get("basis")

		if s := q.Get("bid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid bid: %v", err))
			}
			req.BasisID = spec.BID(u)
		}
		n, err := queryN(q.Get("n"))
		if err != nil {
			return nil, err
		}
		req.N = n
		export, err := queryExport(q.Get("export"))
		if err != nil {
			return nil, err
		}
		req.Export = export
		return req, nil

	case http.MethodPost:
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, fmt.Errorf("method not allowed")
	}
}

// DecodeBoundedRequest 會把 HTTP 請求解碼成 BoundedRequest。
//
// GET 參數：k（bound）/ n / export。
func DecodeBoundedRequest(r *http.Request) (*BoundedRequest, error) {
	req := &BoundedRequest{}

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if s := q.Get("k"); s != "" {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid k: %v", err))
			}
			req.Bound = u
		}
		n, err := queryN(q.Get("n"))
		if err != nil {
			return nil, err
		}
		req.N = n
		export, err := queryExport(q.Get("export"))
		if err != nil {
			return nil, err
		}
		req.Export = export
		return req, nil

	case http.MethodPost:
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, fmt.Errorf("method not allowed")
	}
}

// DecodeWithPrimesRequest 會把 HTTP 請求解碼成 WithPrimesRequest。
//
// GET 參數：primes（逗號分隔）/ n / export。
func DecodeWithPrimesRequest(r *http.Request) (*WithPrimesRequest, error) {
	req := &WithPrimesRequest{}

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if s := q.Get("primes"); s != "" {
			ps, err := parsePrimeList(s)
			if err != nil {
				return nil, err
			}
			req.Primes = ps
		}
		n, err := queryN(q.Get("n"))
		if err != nil {
			return nil, err
		}
		req.N = n
		export, err := queryExport(q.Get("export"))
		if err != nil {
			return nil, err
		}
		req.Export = export
		return req, nil

	case http.MethodPost:
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, fmt.Errorf("method not allowed")
	}
}

// ============================================================
// ** 內部方法 **
// ============================================================

func decodeBody(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func queryN(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.NewWarn(fmt.Sprintf("invalid n: %v", err))
	}
	return v, nil
}

func queryExport(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errs.NewWarn("invalid export value " + err.Error())
	}
	return v, nil
}

func parsePrimeList(s string) ([]uint64, error) {
	parts := strings.Split(s, ",")
	ps := make([]uint64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		u, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, errs.NewWarn(fmt.Sprintf("invalid primes entry %q: %v", part, err))
		}
		ps = append(ps, u)
	}
	return ps, nil
}

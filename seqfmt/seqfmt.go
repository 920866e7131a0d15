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

// Package seqfmt 定義 smooth number 序列的緊湊傳輸格式。
//
// 序列嚴格遞增，因此以「差分 + uvarint」編碼：
//
//	payload := uvarint(count) || uvarint(terms[0]) || uvarint(terms[1]-terms[0]) || ...
//
// 嚴格遞增保證每個差分 ≥ 1，小項密集的前段會被壓得很短。
// 二進位通道（檔案 / application/octet-stream）直接用 payload；
// JSON/HTTP 文字通道用 Base64/Base64URL 包一層。
package seqfmt

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/zintix-labs/smoothlab/errs"
)

// EncodeTerms 將嚴格遞增的序列編成差分 uvarint payload。
//
// 前置條件由呼叫端（merge.Result）保證；這裡不重驗遞增性。
func EncodeTerms(terms []uint64) []byte {
	var scratch [binary.MaxVarintLen64]byte
	out := make([]byte, 0, 2+len(terms)*2) // 小項差分多半 1~2 bytes

	n := binary.PutUvarint(scratch[:], uint64(len(terms)))
	out = append(out, scratch[:n]...)

	prev := uint64(0)
	for i, t := range terms {
		d := t
		if i > 0 {
			d = t - prev
		}
		n := binary.PutUvarint(scratch[:], d)
		out = append(out, scratch[:n]...)
		prev = t
	}
	return out
}

// DecodeTerms 還原 EncodeTerms 的輸出。
// maxTerms 是防禦上限，避免對不可信輸入做無上界的配置。
func DecodeTerms(payload []byte, maxTerms int) ([]uint64, error) {
	cnt, size := binary.Uvarint(payload)
	if size <= 0 {
		return nil, errs.NewWarn("decode terms failed: invalid count varint")
	}
	if maxTerms > 0 && cnt > uint64(maxTerms) {
		return nil, errs.NewWarn("decode terms failed: count exceeds maxTerms")
	}
	rest := payload[size:]

	out := make([]uint64, 0, cnt)
	prev := uint64(0)
	for i := uint64(0); i < cnt; i++ {
		d, n := binary.Uvarint(rest)
		if n <= 0 {
			return nil, errs.NewWarn("decode terms failed: truncated payload")
		}
		rest = rest[n:]
		v := d
		if i > 0 {
			v = prev + d
			if v < prev { // 差分相加繞回，payload 不可信
				return nil, errs.NewWarn("decode terms failed: delta overflow")
			}
		}
		out = append(out, v)
		prev = v
	}
	return out, nil
}

// WriteTerms 將編碼後的序列寫入 w（先寫 payload 長度 frame，方便串流讀取）。
func WriteTerms(w io.Writer, terms []uint64) error {
	payload := EncodeTerms(terms)
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(payload)))
	if _, err := w.Write(hdr[:n]); err != nil {
		return errs.Wrap(err, "write terms frame header failed")
	}
	if _, err := w.Write(payload); err != nil {
		return errs.Wrap(err, "write terms frame payload failed")
	}
	return nil
}

// EncodeBase64 / EncodeBase64URL：文字通道（JSON、query string）用的外層包裝。

func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64 failed")
	}
	return b, nil
}

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64url failed")
	}
	return b, nil
}

// EncodeHex 給 logs/debug 用：比 Base64 大，但人眼可讀、可直接複製。
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode hex failed")
	}
	return b, nil
}

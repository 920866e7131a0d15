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

// Package index 提供服務主頁：簡單列出可用的 endpoints，方便第一次接觸的人探索。
package index

import "net/http"

const indexHTML = `<!doctype html>
<html lang="zh-Hant">
<head>
  <meta charset="utf-8" />
  <link rel="icon" type="image/svg+xml" href="/favicon.svg" />
  <title>Smoothlab</title>
  <style>
    body { font-family: -apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif; background:#0f172a; color:#e2e8f0; margin:0; }
    .wrap { max-width: 720px; margin: 48px auto; padding: 20px 24px; background:#111827; border:1px solid #1f2937; border-radius:12px; }
    h1 { margin: 0 0 8px; font-size: 24px; }
    p { color:#94a3b8; }
    table { width:100%; border-collapse:collapse; margin-top:16px; font-size:14px; }
    td { padding:8px 10px; border-top:1px solid #1f2937; }
    code { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; color:#38bdf8; }
    a { color:#38bdf8; }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>Smoothlab</h1>
    <p>k-smooth sequence generation service.</p>
    <table>
      <tr><td><code>GET /v1/catalog</code></td><td>registered basis summaries</td></tr>
      <tr><td><code>GET /v1/seq?basis=hamming&amp;n=20</code></td><td>generate from a registered basis</td></tr>
      <tr><td><code>GET /v1/bounded?k=7&amp;n=20</code></td><td>ad-hoc bounded basis (primes &le; k)</td></tr>
      <tr><td><code>GET /v1/withprimes?primes=2,5&amp;n=20</code></td><td>ad-hoc explicit basis</td></tr>
      <tr><td><code>GET /v1/stat?basis=hamming&amp;n=1000</code></td><td>growth / distribution report</td></tr>
      <tr><td><code>GET /v1/export?basis=hamming&amp;n=1000</code></td><td>delta-encoded wire payload</td></tr>
      <tr><td><a href="/dev">/dev</a></td><td>dev panel</td></tr>
    </table>
  </div>
</body>
</html>`

// IndexHandlerFn 回傳主頁 HTML。
func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

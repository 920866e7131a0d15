// Package dev 提供 Smoothlab 的「內部 Dev Panel」HTTP endpoints。
//
// 目的（ explain the why ）：
//   - 給數學家 / 後端在開發期快速驗證：指定 basis（或即時貼 primes）、項數 n，
//     然後執行 Seq（看序列本體）或 Stat（看 growth / 分布統計）。
//   - 序列生成是 deterministic 的，因此 Dev Panel 不需要 seed / replay 機制；
//     同一組輸入永遠得到同一條序列。
//
// 注意（ contract ）：
//   - 這不是 production API；它偏向 debug / tooling，行為允許更寬鬆。
//   - 這裡的錯誤處理走 `httperr.Errs`（以 errs.Warn/errs.Fatal 對應 HTTP response）。
package dev

import (
	"embed"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/smoothlab"
	"github.com/zintix-labs/smoothlab/catalog"
	"github.com/zintix-labs/smoothlab/dto"
	"github.com/zintix-labs/smoothlab/errs"
	"github.com/zintix-labs/smoothlab/server/httperr"
	"github.com/zintix-labs/smoothlab/server/netsvr"
	"github.com/zintix-labs/smoothlab/server/svrcfg"
	"github.com/zintix-labs/smoothlab/spec"
)

// devRequest 是 Dev Panel 的「輸入 payload」。
//
//   - `bid` 與 `basis` 兩者擇一即可；若兩者同時存在，後端會優先使用 bid 做解析。
//   - `n` 是要求項數；前端會 cap 在 100,000 以避免回傳 payload 過大。
//   - `export` 為 true 時序列以 delta 編碼的 base64url payload 回傳。
type devRequest struct {
	BID    int64  `json:"bid"`
	Basis  string `json:"basis"`
	N      int    `json:"n"`
	Export bool   `json:"export"`
}

// Register 註冊 Dev Panel 的 routes。
//
// Routes：
//   - GET  /dev       ：Dev Panel HTML（內嵌 JS）。
//   - GET  /dev/meta  ：回傳 Catalog summary（供前端下拉選單：Basis）。
//   - POST /dev/seq   ：生成序列並回傳 terms（或 export payload）。
//   - POST /dev/stat  ：生成序列並回傳統計報表（不回傳逐項 terms）。
//
// 依賴（dependency）：
//   - 需要 cfg.Lab 已被上層組裝完成並注入；否則會回 errs.Fatal。
func Register(svr netsvr.NetRouter, cfg *svrcfg.SvrCfg) {
	svr.Get("/dev", devPage)
	svr.Get("/favicon.svg", favicon)
	svr.Get("/dev/meta", devMeta(cfg))
	svr.Post("/dev/seq", devSeq(cfg))
	svr.Post("/dev/stat", devStat(cfg))
}

// devPageHTML 是內嵌的 Dev Panel UI。
//
// UI 行為（contract）：
//   - Basis：由 /dev/meta 動態載入。
//   - N：
//   - Seq ：前端會 cap 在 100,000 以避免回傳 payload 過大。
//   - Stat：同樣 cap 在 100,000（統計是一次生成後離線計算，量級相同）。
//
// 回傳呈現：
//   - Seq ：顯示狀態列（status / produced / last）與 terms 本體。
//   - Stat：僅顯示統計（summary / growth / dist），不顯示逐項 terms。
const devPageHTML = `<!doctype html>
<html lang="zh-Hant">
<head>
  <meta charset="utf-8" />
  <link rel="icon" type="image/svg+xml" href="/favicon.svg" />
  <title>Smoothlab Dev</title>
  <style>
    body { font-family: -apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif; background:#0f172a; color:#e2e8f0; margin:0; }
    .wrap { max-width: 980px; margin: 24px auto; padding: 16px 20px; background:#111827; border:1px solid #1f2937; border-radius:12px; box-shadow:0 12px 50px rgba(0,0,0,0.35); }
    h1 { margin: 0 0 16px; font-size: 22px; letter-spacing: 0.3px; }
    .grid { display:grid; grid-template-columns: repeat(auto-fit, minmax(180px,1fr)); gap:12px; margin-bottom:12px; }
    label { display:flex; flex-direction:column; gap:6px; font-size: 13px; color:#cbd5e1; }
    input, select { background:#0b1224; color:#e2e8f0; border:1px solid #1f2738; border-radius:8px; padding:10px 12px; font-size:14px; }
    input:focus, select:focus { outline:1px solid #38bdf8; border-color:#38bdf8; }
    .actions { position:relative; display:flex; gap:10px; align-items:center; justify-content:flex-end; margin: 8px 0 14px; }
    button { cursor:pointer; border:none; border-radius:10px; padding:10px 14px; font-weight:600; letter-spacing:0.2px; }
    #btn-seq { background:#38bdf8; color:#0b1224; }
    #btn-stat { background:#22c55e; color:#0b1224; }
    #btn-clear { background:#1f2937; color:#e2e8f0; border:1px solid #334155; }
    button:disabled { opacity:0.6; cursor:not-allowed; }
    .hint { font-size: 12px; color:#94a3b8; margin-top:4px; }
    .info { position:absolute; left:50%; transform:translateX(-50%); font-size:13px; color:#94a3b8; }
    .info.warn { color:#f87171; font-weight:600; }
    #summary { background:#0b1224; border:1px solid #1f2738; border-radius:12px; padding:14px; min-height:120px; overflow:auto; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; white-space:pre-wrap; margin-bottom:12px; }
    #terms { background:#0b1224; border:1px solid #1f2738; border-radius:12px; padding:14px; max-height:50vh; overflow:auto; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; white-space:pre-wrap; display:none; }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>Smoothlab Dev Panel</h1>
    <div class="grid">
      <label>Basis
        <select id="basis"></select>
      </label>
      <label>N (terms)
        <input id="n" type="number" min="1" max="100000" value="20" />
      </label>
      <label>Export (b64u payload)
        <select id="export">
          <option value="false" selected>false</option>
          <option value="true">true</option>
        </select>
      </label>
    </div>
    <div class="actions">
      <button id="btn-seq">Seq</button>
      <button id="btn-stat">Stat</button>
      <button id="btn-clear">Clear</button>
      <span class="info" id="info"></span>
    </div>

    <pre id="summary"></pre>
    <pre id="terms"></pre>
  </div>
<script>
const basisSel = document.getElementById('basis');
const nInput = document.getElementById('n');
const exportSel = document.getElementById('export');
const summary = document.getElementById('summary');
const termsBox = document.getElementById('terms');
const infoEl = document.getElementById('info');
const btnSeq = document.getElementById('btn-seq');
const btnStat = document.getElementById('btn-stat');
const btnClear = document.getElementById('btn-clear');

function setInfo(msg, warn) {
  infoEl.textContent = msg;
  infoEl.classList.toggle('warn', !!warn);
}

function setLoading(on) {
  btnSeq.disabled = on;
  btnStat.disabled = on;
}

async function loadMeta() {
  try {
    const res = await fetch('/dev/meta');
    if (!res.ok) throw new Error(await res.text());
    const data = await res.json();
    const list = Array.isArray(data) ? data : [];
    basisSel.innerHTML = '';
    list.forEach((b) => {
      const opt = document.createElement('option');
      opt.value = String(b.bid);
      const extra = b.kind === 'bounded' ? ('bound=' + b.bound) : ('primes=[' + (b.primes || []).join(',') + ']');
      opt.textContent = b.name + ' (bid=' + b.bid + ', ' + extra + ')';
      basisSel.appendChild(opt);
    });
  } catch (err) {
    summary.textContent = 'Load meta failed: ' + err.message;
  }
}

function payload() {
  const n = Math.min(Number(nInput.value) || 1, 100000);
  return {
    bid: Number(basisSel.value) || 0,
    n: n,
    export: exportSel.value === 'true',
  };
}

async function runSeq() {
  setLoading(true);
  try {
    const res = await fetch('/dev/seq', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(payload()),
    });
    if (!res.ok) throw new Error(await res.text());
    const data = await res.json();
    const head = {
      basis: data.basis, bid: data.bid, kind: data.kind, primes: data.primes,
      requested: data.requested, produced: data.produced,
      status: data.status, truncated: data.truncated, last: data.last,
    };
    summary.textContent = JSON.stringify(head, null, 2);
    if (data.terms) {
      termsBox.textContent = data.terms.join('\n');
      termsBox.style.display = 'block';
    } else if (data.terms_b64u) {
      termsBox.textContent = data.terms_b64u;
      termsBox.style.display = 'block';
    } else {
      termsBox.style.display = 'none';
    }
    setInfo(data.truncated ? 'sequence truncated: basis exhausted in uint64' : '', data.truncated);
  } catch (err) {
    summary.textContent = 'Request failed: ' + err.message;
    termsBox.style.display = 'none';
    setInfo('', false);
  } finally {
    setLoading(false);
  }
}

async function runStat() {
  setLoading(true);
  try {
    const res = await fetch('/dev/stat', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(payload()),
    });
    if (!res.ok) throw new Error(await res.text());
    const data = await res.json();
    summary.textContent = JSON.stringify(data, null, 2);
    termsBox.style.display = 'none';
    setInfo('', false);
  } catch (err) {
    summary.textContent = 'Request failed: ' + err.message;
    setInfo('', false);
  } finally {
    setLoading(false);
  }
}

btnSeq.addEventListener('click', runSeq);
btnStat.addEventListener('click', runStat);
btnClear.addEventListener('click', () => {
  summary.textContent = '';
  termsBox.textContent = '';
  termsBox.style.display = 'none';
  setInfo('', false);
});

loadMeta();
</script>
</body>
</html>`

// devPage 回傳內嵌 HTML（single page）。這裡不做 templating，降低 dev tool 維護成本。
func devPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(devPageHTML))
}

// favicon 提供 Dev Panel 的 favicon.svg。
func favicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(faviconSVG))
}

// devMeta 回傳 Catalog summary（JSON）。
//
// 前端依賴欄位：
//   - bid / name / kind
//   - bound（bounded）或 primes（explicit）
func devMeta(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		lab, ok := getLab(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("lab is required"))
			return
		}
		sum, err := lab.Summary()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// devSeq 生成序列並回傳完整 DTO（含 terms 或 export payload）。
//
// 流程（high level）：
//  1. decode devRequest（JSON body）
//  2. resolve basis（bid/name）→ catalog.Summary
//  3. 建立 Generator → Sequence()
func devSeq(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := new(devRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
		lab, ok := getLab(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("lab is required"))
			return
		}
		sum, err := resolveSummary(lab, req)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.N < 1 {
			httperr.Errs(w, errs.NewWarn("n is required"))
			return
		}
		g, err := lab.NewGenerator(sum.BID)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		result, err := g.Sequence(&dto.SequenceRequest{
			BasisID: sum.BID,
			N:       req.N,
			Export:  req.Export,
		})
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

// devStat 生成序列並只回統計報表（statistic）。
//
// 和 devSeq 的差異：
//   - devStat 不回逐項 terms（降低 response size），僅回 SeqReport。
func devStat(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := new(devRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
		lab, ok := getLab(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("lab is required"))
			return
		}
		sum, err := resolveSummary(lab, req)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.N < 1 {
			httperr.Errs(w, errs.NewWarn("n is required"))
			return
		}
		g, err := lab.NewGenerator(sum.BID)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		st, err := g.Report(req.N)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	}
}

// getLab 從 server config 取得已組裝的 Lab instance。
// Dev routes 不負責組裝（assembler），只負責使用（runtime entry）。
func getLab(cfg *svrcfg.SvrCfg) (*smoothlab.Lab, bool) {
	if cfg == nil || cfg.Lab == nil {
		return nil, false
	}
	return cfg.Lab, true
}

// resolveSummary 解析使用者指定的 basis：
//   - 若 bid > 0：以 bid 精準匹配（fast path）。
//   - 否則若 basis(name) 非空：先做 case-insensitive name 匹配；也允許把 basis 當作數字字串解析成 bid。
//
// 回傳 catalog.Summary 作為後續生成的依據。
func resolveSummary(lab *smoothlab.Lab, req *devRequest) (catalog.Summary, error) {
	sums, err := lab.Summary()
	if err != nil {
		return catalog.Summary{}, err
	}
	if req.BID > 0 {
		bid := spec.BID(req.BID)
		for _, s := range sums {
			if s.BID == bid {
				return s, nil
			}
		}
		return catalog.Summary{}, errs.NewWarn("bid not found")
	}
	name := strings.TrimSpace(req.Basis)
	if name != "" {
		for _, s := range sums {
			if strings.EqualFold(s.Name, name) {
				return s, nil
			}
		}
		if bid, err := strconv.ParseUint(name, 10, 64); err == nil {
			sb := spec.BID(bid)
			for _, s := range sums {
				if s.BID == sb {
					return s, nil
				}
			}
		}
		return catalog.Summary{}, errs.NewWarn("basis not found")
	}
	return catalog.Summary{}, errs.NewWarn("basis is required")
}

//go:embed favicon.svg
var faviconSVG string

// keep embed imported even if only used for directives
var _ embed.FS

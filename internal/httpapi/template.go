package httpapi

import "html/template"

// ---------- Template ----------

var landingTmpl = template.Must(template.New("landing").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>TubTakes tier list</title>
<style>
:root{
  --mint-300:#58dfbf; --mint-500:#22d8ad;
  --bg-dark-1:#0c2924; --bg-dark-2:#0e312b;
  --glass-tint:rgba(20,50,45,0.30);
  --text-900:#e9fffa; --text-700:#b6e6d9;
}
*{box-sizing:border-box}
html,body{height:100%;margin:0;font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial}
body{
  color:var(--text-900);
  background:linear-gradient(180deg, var(--bg-dark-1) 0%, var(--bg-dark-2) 100%);
}
.container{min-height:100%;display:flex;align-items:flex-start;justify-content:center;padding:24px}
.card{
  width:min(1000px,92vw);
  background:linear-gradient(180deg, rgba(255,255,255,0.10), rgba(255,255,255,0.06)), var(--glass-tint);
  border:1px solid rgba(180,255,237,0.18);border-radius:24px;padding:28px;
  box-shadow:0 24px 60px rgba(12,41,36,0.55);
}
h1{font-size:24px;margin:0 0 6px 0}
.sub{color:var(--text-700);margin:0 0 18px 0}
form{display:flex;gap:10px;margin-bottom:18px}
input[type=text]{flex:1;padding:12px;border-radius:14px;border:1px solid rgba(255,255,255,0.12);background:rgba(255,255,255,0.06);color:var(--text-900)}
button{padding:12px 18px;border:0;border-radius:14px;background:linear-gradient(145deg,var(--mint-500),var(--mint-300));color:#fff;font-weight:700;cursor:pointer}
.row{display:flex;align-items:stretch;margin-bottom:6px;border-radius:12px;overflow:hidden;background:rgba(255,255,255,0.04)}
.label{width:64px;display:flex;align-items:center;justify-content:center;font-size:24px;font-weight:800;color:#222}
.items{flex:1;display:flex;flex-wrap:wrap;gap:8px;padding:8px;min-height:72px}
.item{display:flex;flex-direction:column;align-items:center;width:88px;font-size:12px;text-align:center}
.item img{width:64px;height:64px;object-fit:cover;border-radius:10px}
.notice{padding:10px 14px;border-radius:12px;margin-bottom:12px;background:rgba(255,200,80,0.15);border:1px solid rgba(255,200,80,0.35)}
.error{background:rgba(255,90,90,0.15);border-color:rgba(255,90,90,0.35)}
code{word-break:break-all}
</style>
</head>
<body>
<div class="container"><div class="card">
  <h1>TubTakes</h1>
  <p class="sub">Paste a tier code or a TT- short code to view a shared tier list.</p>
  <form method="get" action="/">
    <input type="text" name="c" value="{{.Input}}" placeholder="U0ExLEFCMiw= or TT-..." autocomplete="off" />
    <button type="submit">Open</button>
  </form>
  {{if .Error}}<div class="notice error">{{.Error}}</div>{{end}}
  {{if .RemapMissing}}<div class="notice">This short code was made on another device, so only the tier layout could be restored ({{.Placeholders}} flavors hidden).</div>{{end}}
  {{if .Unresolved}}<div class="notice">{{len .Unresolved}} flavors in this code are not in the catalog.</div>{{end}}
  {{range .Tiers}}
  <div class="row">
    <div class="label" style="background:{{.Color}}">{{.Label}}</div>
    <div class="items">
      {{range .Flavors}}<div class="item">{{if .Image}}<img src="{{.Image}}" alt="{{.Name}}" loading="lazy" />{{end}}<span>{{.Name}}</span></div>{{end}}
    </div>
  </div>
  {{end}}
  {{if .Code}}<p class="sub">Code: <code>{{.Code}}</code></p>{{end}}
</div></div>
</body>
</html>`))

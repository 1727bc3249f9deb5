package devicelog

import (
	"bytes"
	"html/template"
	"time"
)

// TileView is everything RenderTile needs.
type TileView struct {
	Title      string
	Entries    []Entry
	LastUpdate time.Time
	Location   *time.Location
}

var typeIcons = map[Type]string{
	TypeSystem:  "⚙️",
	TypeSuccess: "✅",
	TypeInfo:    "ℹ️",
	TypeWarning: "⚠️",
	TypeError:   "❌",
	TypeDevice:  "📱",
}

// IconFor returns the glyph shown next to an entry of type t.
func IconFor(t Type) string {
	if icon, ok := typeIcons[t]; ok {
		return icon
	}
	return typeIcons[TypeInfo]
}

type tileRow struct {
	Time    string
	Type    Type
	Source  string
	Icon    string
	Message string
}

var tileTemplate = template.Must(template.New("tile").Parse(`<div class="device-logs-tile">
<style>
.device-logs-tile{padding:10px;background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);border-radius:12px;color:#fff;height:100%;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;font-size:11px}
.tile-header{display:flex;align-items:center;justify-content:space-between;margin-bottom:8px;border-bottom:1px solid rgba(255,255,255,.3);padding-bottom:6px}
.tile-title{font-size:14px;font-weight:600;margin:0}
.last-update{font-size:9px;opacity:.7}
.logs-container{max-height:130px;overflow-y:auto}
.log-entry{padding:3px 0;border-bottom:1px solid rgba(255,255,255,.15)}
.log-header{display:flex;justify-content:space-between;align-items:center;margin-bottom:1px}
.timestamp{opacity:.8;font-size:9px}
.source{background:rgba(255,255,255,.2);padding:1px 4px;border-radius:3px;font-size:8px;text-transform:uppercase}
.source.external{background:rgba(34,197,94,.3)}
.source.tile{background:rgba(59,130,246,.3)}
.message{display:flex;align-items:flex-start;gap:4px;line-height:1.2}
</style>
<div class="tile-header"><h3 class="tile-title">📊 {{.Title}}</h3></div>
<div class="last-update">Updated: {{.Updated}}</div>
<div class="logs-container">
{{- range .Rows}}
<div class="log-entry {{.Type}}"><div class="log-header"><span class="timestamp">{{.Time}}</span><span class="source {{.Source}}">{{.Source}}</span></div><div class="message"><span class="icon">{{.Icon}}</span>{{.Message}}</div></div>
{{- else}}
<div class="log-entry">📭 No device data</div>
{{- end}}
</div>
</div>`))

// RenderTile produces the HTML fragment embedded in the tile payload.
func RenderTile(view TileView) (string, error) {
	loc := view.Location
	if loc == nil {
		loc = time.Local
	}
	updated := "--:--:--"
	if !view.LastUpdate.IsZero() {
		updated = view.LastUpdate.In(loc).Format(time.TimeOnly)
	}
	rows := make([]tileRow, 0, len(view.Entries))
	for _, e := range view.Entries {
		rows = append(rows, tileRow{
			Time:    e.Timestamp.In(loc).Format(time.TimeOnly),
			Type:    e.Type,
			Source:  e.Source,
			Icon:    IconFor(e.Type),
			Message: e.Message,
		})
	}
	var buf bytes.Buffer
	err := tileTemplate.Execute(&buf, struct {
		Title   string
		Updated string
		Rows    []tileRow
	}{Title: view.Title, Updated: updated, Rows: rows})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

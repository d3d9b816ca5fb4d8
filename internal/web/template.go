package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/arjenlentz/HomeResourceMonitor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"litres": func(ml uint64) string {
		return fmt.Sprintf("%d.%03d", ml/1000, ml%1000)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Solar Monitor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.override { color: #c60; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Solar Hot-Water Monitor</h1>

<h2>Temperatures</h2>
<table>
<tr><th>Collector</th><td>{{.CollectorC}} &deg;C</td></tr>
<tr><th>Vat</th><td>{{.VatC}} &deg;C</td></tr>
<tr><th>Ready</th><td>{{if .Primed}}yes{{else}}priming{{end}}</td></tr>
</table>

<h2>Booster</h2>
<table>
<tr><th>Relay</th><td class="{{if eq (printf "%s" .Boost) "ON"}}on{{else}}off{{end}}">{{.Boost}}</td></tr>
<tr><th>Override</th><td{{if .Override}} class="override"{{end}}>{{if .Override}}ACTIVE{{else}}-{{end}}</td></tr>
</table>

<h2>Water Flow</h2>
<table>
<tr><th>Rate</th><td>{{printf "%.2f" .Flow.Rate}} L/min</td></tr>
<tr><th>This cycle</th><td>{{.Flow.VolumeML}} ml</td></tr>
<tr><th>Total</th><td>{{litres .Flow.TotalML}} L</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>UDP target</th><td>{{.Config.UDPTarget}}</td></tr>
<tr><th>UDP listen</th><td>{{.Config.UDPListen}}</td></tr>
</table>

<h2>Activity</h2>
<table>
<tr><th>Temp records</th><td>{{.Counts.TempRecords}}</td></tr>
<tr><th>Flow records</th><td>{{.Counts.FlowRecords}}</td></tr>
<tr><th>Commands</th><td>{{.Counts.Commands}}</td></tr>
<tr><th>Read failures</th><td>{{.Counts.ReadFailures}}</td></tr>
<tr><th>Relay writes</th><td>{{.Counts.RelayWrites}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Cycle</th><td>{{.Config.CycleMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// The template wants formatted degree strings and an Uptime field rather
	// than the Snapshot's method.
	data := struct {
		status.Snapshot
		CollectorC string
		VatC       string
		Uptime     time.Duration
	}{
		Snapshot:   snap,
		CollectorC: status.FormatCentiC(snap.Collector),
		VatC:       status.FormatCentiC(snap.Vat),
		Uptime:     snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}

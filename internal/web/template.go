package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/plant-waterer/internal/status"
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
	"seconds": func(d time.Duration) string {
		return fmt.Sprintf("%.1fs", d.Seconds())
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Plant Waterer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.running, .wet, .connected { color: green; font-weight: bold; }
.idle { color: #888; }
.dry, .disconnected { color: red; }
.unknown { color: orange; }
.bar span { display: inline-block; width: 14px; height: 14px; margin-right: 2px; background: #ddd; }
.bar span.lit { background: #2a2; }
</style>
</head>
<body>
<h1>Plant Waterer</h1>

<h2>State</h2>
<table>
<tr><th>Duration</th><td>step {{.Step}} of {{.Config.MaxStep}} ({{seconds .RunDuration}}) <span class="bar">{{range .Segments}}<span{{if .}} class="lit"{{end}}></span>{{end}}</span></td></tr>
<tr><th>Pump</th><td id="pump" class="{{if eq .Pump.String "RUNNING"}}running{{else}}idle{{end}}">{{.Pump}}{{if eq .Pump.String "RUNNING"}} ({{seconds .PumpRemaining}} left){{end}}</td></tr>
<tr><th>Soil</th><td id="soil" class="{{if eq .Soil "DRY"}}dry{{else if eq .Soil "WET"}}wet{{else}}unknown{{end}}">{{.Soil}}</td></tr>
<tr><th>Next check</th><td>{{seconds .NextCheck}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Button presses</th><td>{{.Counts.Presses}}</td></tr>
<tr><th>Moisture checks</th><td>{{.Counts.Evaluations}}</td></tr>
<tr><th>Dry readings</th><td>{{.Counts.DryReadings}}</td></tr>
<tr><th>Pump runs</th><td>{{.Counts.PumpRuns}}</td></tr>
<tr><th>Dry while running</th><td>{{.Counts.IgnoredDry}}</td></tr>
<tr><th>Pump time</th><td>{{seconds .PumpTime}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Backend</th><td>{{.Config.Backend}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickPeriod}}</td></tr>
<tr><th>Check interval</th><td>{{.Config.CheckIntervalMs}}ms</td></tr>
<tr><th>Step</th><td>{{.Config.StepMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

// segments mirrors the LED bargraph: one entry per step, lit up to the current step.
func segments(snap status.Snapshot) []bool {
	out := make([]bool, snap.Config.MaxStep)
	for i := range out {
		out[i] = i < int(snap.Step)
	}
	return out
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Templates can't call methods that need arguments, so precompute.
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		Segments []bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Segments: segments(snap),
	}
	indexTmpl.Execute(w, data)
}

package web

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/sweeney/reaction-arcade/internal/leaderboard"
	"github.com/sweeney/reaction-arcade/internal/status"
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
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"seconds": func(ms int64) string {
		return fmt.Sprintf("%.2fs", float64(ms)/1000)
	},
	"cm": func(v float64) string {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return "-"
		}
		return fmt.Sprintf("%.1f cm", v)
	},
	"inc": func(i int) int { return i + 1 },
	"deref": func(v *int64) int64 {
		if v == nil {
			return 0
		}
		return *v
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Reaction Arcade</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Reaction Arcade<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Game</h2>
<table>
<tr><th>Screen</th><td id="screen">{{orUnknown .Screen}}</td></tr>
<tr><th>Player</th><td id="player">{{if .Player}}{{.Player}}{{else}}-{{end}}</td></tr>
<tr><th>Armed</th><td id="armed" class="{{if .Game.Armed}}on{{else}}off{{end}}">{{if .Game.Armed}}yes{{else}}no{{end}}</td></tr>
<tr><th>Completed</th><td id="completed">{{if .Game.Completed}}yes{{else}}no{{end}}</td></tr>
<tr><th>Best</th><td id="best">{{if .Game.HasBest}}{{seconds .Game.BestTimeMs}}{{else}}-{{end}}</td></tr>
<tr><th>Distance</th><td id="distance">{{if .Game.HasLatest}}{{cm .Game.LatestCM}}{{else}}-{{end}}</td></tr>
<tr><th>Closest</th><td id="closest">{{cm .Game.MinDistance}}</td></tr>
</table>

<h2>Devices</h2>
<table>
<tr><th>Sensor</th><td class="{{if .Sensor.Connected}}connected{{else}}disconnected{{end}}">{{if .Sensor.Message}}{{.Sensor.Message}}{{else}}not connected{{end}}</td></tr>
<tr><th>Camera</th><td class="{{if .Camera.Connected}}connected{{else}}disconnected{{end}}">{{if .Camera.Message}}{{.Camera.Message}}{{else}}not connected{{end}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Armed</th><td>{{.Counts.Armed}}</td></tr>
<tr><th>Completed</th><td>{{.Counts.Completed}}</td></tr>
<tr><th>Missed</th><td>{{.Counts.Missed}}</td></tr>
<tr><th>Timed out</th><td>{{.Counts.TimedOut}}</td></tr>
<tr><th>Reset</th><td>{{.Counts.Reset}}</td></tr>
</table>

<h2>Fastest</h2>
<table>
{{range $i, $r := .Fastest}}<tr><th>{{inc $i}}. {{$r.Name}}</th><td>{{seconds (deref $r.BestFastMs)}} ({{$r.BestScore}})</td></tr>
{{else}}<tr><td>no records</td></tr>
{{end}}</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Frame rate</th><td>{{.Config.FrameRate}} Hz (camera {{.Config.CameraRate}} Hz)</td></tr>
<tr><th>Arm zone</th><td>{{.Config.ArmZoneCM}} cm</td></tr>
<tr><th>Near cooldown</th><td>{{.Config.NearCooldownMs}}ms</td></tr>
<tr><th>Attempt gap</th><td>{{.Config.AttemptGapMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Leaderboard</th><td>{{.Config.Store}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/leaderboard.json">Leaderboard</a> | <a href="/metrics">Metrics</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  function set(id, text) { document.getElementById(id).textContent = text; }
  function setDot(cls, title) { dot.className = "live-dot " + cls; dot.title = title; }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/live");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() { setDot("err", "offline"); setTimeout(connect, 5000); };
    ws.onmessage = function(m) {
      try {
        var s = JSON.parse(m.data).status;
        set("screen", s.screen);
        set("player", s.player || "-");
        set("armed", s.game.armed ? "yes" : "no");
        document.getElementById("armed").className = s.game.armed ? "on" : "off";
        set("completed", s.game.completed ? "yes" : "no");
        set("best", s.game.best_time_ms === null ? "-" : (s.game.best_time_ms / 1000).toFixed(2) + "s");
        set("distance", s.game.latest_cm === null ? "-" : s.game.latest_cm.toFixed(1) + " cm");
        set("closest", s.game.min_distance_cm === null ? "-" : s.game.min_distance_cm.toFixed(1) + " cm");
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, fastest []leaderboard.Record) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Fastest []leaderboard.Record
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Fastest:  fastest,
	}
	indexTmpl.Execute(w, data)
}

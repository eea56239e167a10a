package orbital

import (
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestTrajectoryStateText(t *testing.T) {
	st := TrajectoryState{JD: 2451545.0, Position: Vector3{7e6, -1.5e3, 42.5}, Velocity: Vector3{1.5, 7.5e3, -0.25}}
	var back TrajectoryState
	back.FromText(strings.Split(st.ToText(), " "))
	if back.JD != st.JD {
		t.Fatalf("JD = %f", back.JD)
	}
	if back.Position != st.Position || back.Velocity != st.Velocity {
		t.Fatalf("state = %+v", back)
	}
	assertPanic(t, func() {
		back.FromText([]string{"2451545.0", "not-a-number", "0", "0", "0", "0", "0"})
	})
}

func TestParseTrajectory(t *testing.T) {
	data := `# Creation date (UTC): whenever
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
2451545.000000 7000000.000000 0.000000 0.000000 0.000000 7500.000000 0.000000
2451545.010000 6950000.000000 800000.000000 0.000000 -900.000000 7450.000000 0.000000`
	states := ParseTrajectory(data)
	if len(states) != 2 {
		t.Fatalf("got %d states", len(states))
	}
	if states[0].JD != 2451545.0 || states[0].Velocity.Y != 7500 {
		t.Fatalf("state 0 = %+v", states[0])
	}
	if states[1].Position.Y != 800000 || states[1].Velocity.X != -900 {
		t.Fatalf("state 1 = %+v", states[1])
	}
}

func TestExportConfigIsUseless(t *testing.T) {
	if !(ExportConfig{Filename: "nothing"}).IsUseless() {
		t.Fatal("config with no formats is useful?!")
	}
	if (ExportConfig{AsCSV: true}).IsUseless() {
		t.Fatal("CSV config is useless?!")
	}
	if (ExportConfig{AsXYZV: true}).IsUseless() {
		t.Fatal("XYZV config is useless?!")
	}
}

func TestStreamStates(t *testing.T) {
	prevCfg := orbitalConfig()
	defer func() { config = prevCfg }()
	config.outputDir = t.TempDir()

	epoch := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	r := Vector3{7e6, 0, 0}
	v := Vector3{0, 7.5e3, 0}
	ch := make(chan StateVector, 4)
	ch <- StateVector{Position: r, Velocity: v, Epoch: epoch}
	// Under a minute after the previous sample: must be dropped.
	ch <- StateVector{Position: r, Velocity: v, Epoch: epoch.Add(30 * time.Second)}
	ch <- StateVector{Position: r.Scale(-1), Velocity: v.Scale(-1), Epoch: epoch.Add(2 * time.Minute)}
	ch <- StateVector{Position: r, Velocity: v, Epoch: epoch.Add(4 * time.Minute)}
	close(ch)
	StreamStates(ExportConfig{Filename: "unittest", AsXYZV: true, AsCSV: true}, ch)

	xyzv, err := os.ReadFile(config.outputDir + "/prop-unittest.xyzv")
	if err != nil {
		t.Fatalf("xyzv: %s", err)
	}
	states := ParseTrajectory(string(xyzv))
	if len(states) != 3 {
		t.Fatalf("got %d xyzv records", len(states))
	}
	if states[1].JD <= states[0].JD || states[2].JD <= states[1].JD {
		t.Fatal("JDs not increasing")
	}
	if states[1].Position.X != -7e6 {
		t.Fatalf("record 1 = %+v", states[1])
	}

	asCSV, err := os.ReadFile(config.outputDir + "/traj-unittest.csv")
	if err != nil {
		t.Fatalf("csv: %s", err)
	}
	if !strings.Contains(string(asCSV), "time,x,y,z,vx,vy,vz") {
		t.Fatal("missing CSV header")
	}
	if got := strings.Count(string(asCSV), "\n2026-08-21"); got != 3 {
		t.Fatalf("got %d CSV records", got)
	}
}

func TestStreamStatesAppend(t *testing.T) {
	prevCfg := orbitalConfig()
	defer func() { config = prevCfg }()
	config.outputDir = t.TempDir()

	epoch := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	ch := make(chan StateVector, 1)
	ch <- StateVector{Position: Vector3{7e6, 0, 0}, Velocity: Vector3{0, 7.5e3, 0}, Epoch: epoch}
	close(ch)
	conf := ExportConfig{Filename: "appended", AsCSV: true,
		CSVAppend:    func(st StateVector) string { return strconv.FormatFloat(st.Position.Norm(), 'f', 0, 64) },
		CSVAppendHdr: func() string { return "radius" },
	}
	StreamStates(conf, ch)
	asCSV, err := os.ReadFile(config.outputDir + "/traj-appended.csv")
	if err != nil {
		t.Fatalf("csv: %s", err)
	}
	if !strings.Contains(string(asCSV), "vz,radius") {
		t.Fatal("missing appended header")
	}
	if !strings.Contains(string(asCSV), ",7000000") {
		t.Fatal("missing appended column")
	}
}

func TestExportPasses(t *testing.T) {
	prevCfg := orbitalConfig()
	defer func() { config = prevCfg }()
	config.outputDir = t.TempDir()

	rise := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	passes := []SatellitePass{
		{SatelliteID: "ISS", RiseTime: rise, CulminationTime: rise.Add(5 * time.Minute), SetTime: rise.Add(10 * time.Minute),
			MaxElevation: 87.3, RiseAzimuth: 270, SetAzimuth: 90, EstimatedMagnitude: -3.79, IsVisible: true},
		{SatelliteID: "HST", RiseTime: rise.Add(time.Hour), CulminationTime: rise.Add(time.Hour + 4*time.Minute), SetTime: rise.Add(time.Hour + 8*time.Minute),
			MaxElevation: 41.0, RiseAzimuth: 210.5, SetAzimuth: 75.2, EstimatedMagnitude: 1.25, IsVisible: false},
	}
	path := ExportPasses("unittest", passes, false)
	if path != config.outputDir+"/passes-unittest.csv" {
		t.Fatalf("path = %s", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %s", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "satellite,rise,") {
		t.Fatalf("header = %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "ISS,2026-08-21T10:00:00Z,270.0,") {
		t.Fatalf("row 1 = %s", lines[1])
	}
	if !strings.Contains(lines[2], ",1.25,false") {
		t.Fatalf("row 2 = %s", lines[2])
	}
}

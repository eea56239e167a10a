package orbital

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// TrajectoryState is one sampled point of an exported trajectory.
type TrajectoryState struct {
	JD       float64
	Position Vector3
	Velocity Vector3
}

// FromText initializes from text.
// The `record` parameter must be an array of seven items.
func (i *TrajectoryState) FromText(record []string) {
	vals := make([]float64, 7)
	for j, c := range record {
		val, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			panic(err)
		}
		vals[j] = val
	}
	i.JD = vals[0]
	i.Position = Vector3{vals[1], vals[2], vals[3]}
	i.Velocity = Vector3{vals[4], vals[5], vals[6]}
}

// ToText converts to text for written output.
func (i *TrajectoryState) ToText() string {
	return fmt.Sprintf("%f %f %f %f %f %f %f", i.JD, i.Position.X, i.Position.Y, i.Position.Z, i.Velocity.X, i.Velocity.Y, i.Velocity.Z)
}

// ParseTrajectory converts the contents of an exported .xyzv file back into
// trajectory states.
func ParseTrajectory(s string) []*TrajectoryState {
	var states []*TrajectoryState
	r := csv.NewReader(strings.NewReader(s))
	r.Comma = ' '
	r.Comment = '#'
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			panic(err)
		}
		state := TrajectoryState{}
		state.FromText(record)
		states = append(states, &state)
	}
	return states
}

// createInterpolatedFile returns a file which requires a defer close statement!
func createInterpolatedFile(filename string, stamped bool, stateDT time.Time) *os.File {
	config := orbitalConfig()
	if stamped {
		t := time.Now()
		filename = fmt.Sprintf("%s/prop-%s-%d-%02d-%02dT%02d.%02d.%02d.xyzv", config.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/prop-%s.xyzv", config.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a UTC Julian date
#   Position in m
#   Velocity in m/s
#   Simulation time start (UTC): %s`, time.Now(), stateDT.UTC()))
	return f
}

// createCSVFile returns a file which requires a defer close statement!
func createCSVFile(filename string, conf ExportConfig, stateDT time.Time) *os.File {
	config := orbitalConfig()
	if conf.Timestamp {
		t := time.Now()
		filename = fmt.Sprintf("%s/traj-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", config.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/traj-%s.csv", config.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are a time stamp, position (m) and velocity (m/s) in ECI.
#   Simulation time start (UTC): %s
time,x,y,z,vx,vy,vz`, time.Now(), stateDT.UTC()))
	if conf.CSVAppendHdr != nil {
		// Append the headers for the appended columns.
		f.WriteString("," + conf.CSVAppendHdr())
	}
	return f
}

// StreamStates streams the output of the propagation history channel to the
// configured files. Run it in its own goroutine; it returns once the
// channel closes.
func StreamStates(conf ExportConfig, stateChan <-chan StateVector) {
	var f, fAsCSV *os.File
	var prev *StateVector
	for state := range stateChan {
		state := state
		if prev == nil {
			if conf.AsXYZV {
				f = createInterpolatedFile(conf.Filename, conf.Timestamp, state.Epoch)
			}
			if conf.AsCSV {
				fAsCSV = createCSVFile(conf.Filename, conf, state.Epoch)
			}
		} else if state.Epoch.Sub(prev.Epoch) < time.Minute {
			// Only write one datapoint per simulation minute.
			continue
		}
		prev = &state
		if conf.AsXYZV {
			asTxt := TrajectoryState{JD: julian.TimeToJD(state.Epoch.UTC()), Position: state.Position, Velocity: state.Velocity}
			if _, err := f.WriteString("\n" + asTxt.ToText()); err != nil {
				panic(err)
			}
		}
		if conf.AsCSV {
			asTxt := fmt.Sprintf("%s,%.3f,%.3f,%.3f,%.3f,%.3f,%.3f", state.Epoch.UTC().Format("2006-01-02 15:04:05"), state.Position.X, state.Position.Y, state.Position.Z, state.Velocity.X, state.Velocity.Y, state.Velocity.Z)
			if conf.CSVAppend != nil {
				asTxt += "," + conf.CSVAppend(state)
			}
			if _, err := fAsCSV.WriteString("\n" + asTxt); err != nil {
				panic(err)
			}
		}
	}
	// The channel is closed, hence the propagation is over.
	if prev == nil {
		return
	}
	if f != nil {
		f.WriteString(fmt.Sprintf("\n# Simulation time end (UTC): %s\n", prev.Epoch.UTC()))
		f.Close()
	}
	if fAsCSV != nil {
		fAsCSV.WriteString(fmt.Sprintf("\n# Simulation time end (UTC): %s\n", prev.Epoch.UTC()))
		fAsCSV.Close()
	}
}

// ExportPasses writes passes to a CSV file in the configured output
// directory and returns the written path.
func ExportPasses(filename string, passes []SatellitePass, stamped bool) string {
	config := orbitalConfig()
	if stamped {
		t := time.Now()
		filename = fmt.Sprintf("%s/passes-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", config.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/passes-%s.csv", config.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Write([]string{"satellite", "rise", "rise_az_deg", "culmination", "max_el_deg", "set", "set_az_deg", "magnitude", "visible"})
	for _, sp := range passes {
		w.Write([]string{sp.SatelliteID, sp.RiseTime.UTC().Format(time.RFC3339), fmt.Sprintf("%.1f", sp.RiseAzimuth), sp.CulminationTime.UTC().Format(time.RFC3339), fmt.Sprintf("%.1f", sp.MaxElevation), sp.SetTime.UTC().Format(time.RFC3339), fmt.Sprintf("%.1f", sp.SetAzimuth), fmt.Sprintf("%.2f", sp.EstimatedMagnitude), strconv.FormatBool(sp.IsVisible)})
	}
	w.Flush()
	return filename
}

// ExportConfig configures the exporting of a propagation.
type ExportConfig struct {
	Filename     string
	AsXYZV       bool
	AsCSV        bool
	Timestamp    bool
	CSVAppend    func(st StateVector) string // Custom export (do not include leading comma)
	CSVAppendHdr func() string               // Header for the custom export
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsXYZV && !c.AsCSV
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/skygazer-labs/orbital"
)

var (
	target      string
	windows     int
	r1, r2      float64
	flyby       string
	vInf        float64
	flybyAlt    float64
	doPropagate bool
	lambertRi   string
	lambertRf   string
	lambertTOF  time.Duration
	lambertType int
)

func init() {
	// Read flags
	flag.StringVar(&target, "target", "", "target planet for launch windows (e.g. Mars)")
	flag.IntVar(&windows, "windows", 3, "number of launch windows to list")
	flag.Float64Var(&r1, "r1", 0, "initial circular orbit radius in m (Hohmann transfer)")
	flag.Float64Var(&r2, "r2", 0, "final circular orbit radius in m (Hohmann transfer)")
	flag.StringVar(&flyby, "flyby", "", "planet for a gravity assist (e.g. Jupiter)")
	flag.Float64Var(&vInf, "vinf", 0, "hyperbolic excess speed in m/s (gravity assist)")
	flag.Float64Var(&flybyAlt, "alt", 0, "periapsis altitude in m (gravity assist)")
	flag.BoolVar(&doPropagate, "propagate", false, "propagate the Hohmann transfer orbit and save it")
	flag.StringVar(&lambertRi, "ri", "", "initial position as x,y,z in km (Lambert)")
	flag.StringVar(&lambertRf, "rf", "", "final position as x,y,z in km (Lambert)")
	flag.DurationVar(&lambertTOF, "tof", 0, "time of flight (Lambert), e.g. 76m")
	flag.IntVar(&lambertType, "ttype", 0, "Lambert transfer type, 0 for auto, 1-4 otherwise")
}

func main() {
	flag.Parse()
	ran := false
	if r1 > 0 && r2 > 0 {
		ran = true
		hohmann()
	}
	if target != "" {
		ran = true
		launchWindows()
	}
	if flyby != "" {
		ran = true
		gravityAssist()
	}
	if lambertRi != "" || lambertRf != "" {
		ran = true
		lambert()
	}
	if !ran {
		flag.Usage()
	}
}

func hohmann() {
	hoh, err := orbital.NewHohmannTransfer(r1, r2, orbital.Earth)
	if err != nil {
		log.Fatalf("hohmann: %s", err)
	}
	fmt.Println(hoh)
	if !doPropagate {
		return
	}
	// Fly the transfer ellipse from periapsis to apoapsis and save it.
	histChan := make(chan orbital.StateVector, 10) // Buffered to not loose any data.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		orbital.StreamStates(orbital.ExportConfig{Filename: "transfer", AsXYZV: true, AsCSV: true, Timestamp: true}, histChan)
	}()
	μ := orbital.Earth.GM()
	vP := math.Sqrt(2*μ/r1 - μ/hoh.TransferSemiMajorAxis)
	initial := orbital.StateVector{Position: orbital.Vector3{X: r1}, Velocity: orbital.Vector3{Y: vP}, Epoch: time.Now()}
	prop := orbital.NewPropagator(orbital.BodyState{Body: orbital.Earth})
	prop.HistChan = histChan
	if _, err := prop.Propagate(context.Background(), initial, hoh.TransferTime, orbital.DefaultStepSize); err != nil {
		log.Fatalf("propagation: %s", err)
	}
	wg.Wait()
	log.Printf("[info] transfer trajectory saved")
}

func launchWindows() {
	body, err := orbital.CelestialBodyFromString(target)
	if err != nil {
		log.Fatalf("target: %s", err)
	}
	wins, err := orbital.LaunchWindows(body, time.Now(), windows)
	if err != nil {
		log.Fatalf("windows: %s", err)
	}
	for no, win := range wins {
		fmt.Printf("#%d %s\n", no+1, win)
	}
}

func gravityAssist() {
	if vInf <= 0 || flybyAlt <= 0 {
		log.Fatal("a gravity assist needs both -vinf and -alt")
	}
	body, err := orbital.CelestialBodyFromString(flyby)
	if err != nil {
		log.Fatalf("flyby: %s", err)
	}
	ga, err := orbital.NewGravityAssist(body, vInf, flybyAlt)
	if err != nil {
		log.Fatalf("assist: %s", err)
	}
	fmt.Println(ga)
}

// parseKmVec parses an "x,y,z" km triple into an SI vector.
func parseKmVec(name, s string) orbital.Vector3 {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		log.Fatalf("%s: need x,y,z in km, got %q", name, s)
	}
	var c [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			log.Fatalf("%s: %s", name, err)
		}
		c[i] = v * 1e3
	}
	return orbital.Vector3{X: c[0], Y: c[1], Z: c[2]}
}

func lambert() {
	if lambertRi == "" || lambertRf == "" || lambertTOF <= 0 {
		log.Fatal("a Lambert solution needs -ri, -rf and -tof")
	}
	if lambertType < 0 || lambertType > 4 {
		log.Fatalf("ttype: %d is not a transfer type", lambertType)
	}
	ttype := orbital.TransferType(lambertType + 1) // 0 maps to auto
	vI, vF, φ, err := orbital.Lambert(parseKmVec("ri", lambertRi), parseKmVec("rf", lambertRf), lambertTOF, ttype, orbital.Earth)
	if err != nil {
		log.Fatalf("lambert: %s", err)
	}
	fmt.Printf("%s transfer over %s\nvi = {%.3f, %.3f, %.3f} km/s (%.3f km/s)\nvf = {%.3f, %.3f, %.3f} km/s (%.3f km/s)\nφ = %.4f\n",
		ttype, lambertTOF,
		vI.X/1e3, vI.Y/1e3, vI.Z/1e3, vI.Norm()/1e3,
		vF.X/1e3, vF.Y/1e3, vF.Z/1e3, vF.Norm()/1e3,
		φ)
}

package orbital

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solar"
)

const (
	// DefaultPassStep is the coarse sampling cadence of the pass scan.
	DefaultPassStep = time.Minute
	// DefaultMinElevation is the culmination mask in degrees. Passes which
	// peak below it are lost to rooftops and haze anyway.
	DefaultMinElevation = 10.0
	// DefaultStdMagRange is the range at which a satellite's standard
	// magnitude is quoted, in meters.
	DefaultStdMagRange = 1e6

	crossingTol   = 100 * time.Millisecond
	crossingMaxIt = 50
	twilightEl    = -6 * deg2rad // civil twilight: the observer's sky counts as dark below this
)

// Satellite is an Earth orbiting object to find passes of.
type Satellite struct {
	ID          string
	Elements    OrbitalElements
	StdMag      float64 // visual magnitude at StdMagRange
	StdMagRange float64 // reference range for StdMag in meters (DefaultStdMagRange if not set)
}

// SatellitePass is one horizon-to-horizon arc of a satellite over an
// observer. Angles are in degrees because these fields go straight onto a
// sky chart.
type SatellitePass struct {
	SatelliteID        string
	RiseTime           time.Time
	CulminationTime    time.Time
	SetTime            time.Time
	MaxElevation       float64 // degrees
	RiseAzimuth        float64 // degrees
	SetAzimuth         float64 // degrees
	EstimatedMagnitude float64
	IsVisible          bool
}

func (sp SatellitePass) String() string {
	vis := "not visible"
	if sp.IsVisible {
		vis = "visible"
	}
	return fmt.Sprintf("%s: rise %s az=%.0f° culm. %s el=%.0f° set %s az=%.0f° (mag=%.1f, %s)", sp.SatelliteID, sp.RiseTime.Format(time.RFC1123), sp.RiseAzimuth, sp.CulminationTime.Format("15:04:05"), sp.MaxElevation, sp.SetTime.Format("15:04:05"), sp.SetAzimuth, sp.EstimatedMagnitude, vis)
}

// passState tracks where in its arc the scan currently is.
type passState uint8

const (
	belowHorizon passState = iota
	rising
	culminating
	setting
)

// PassPredictor finds passes of satellites over ground observers. Create it
// with NewPassPredictor: the zero value has no logger and a zero step.
type PassPredictor struct {
	Step         time.Duration // coarse scan cadence
	MinElevation float64       // culmination mask in degrees
	Illumination bool          // derive IsVisible from solar geometry instead of the elevation heuristic
	logger       kitlog.Logger
}

// NewPassPredictor returns a predictor configured from orbitalConfig, which
// out of the box means one minute sampling, a ten degree culmination mask,
// and illumination checks on.
func NewPassPredictor() *PassPredictor {
	cfg := orbitalConfig()
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "passes")
	return &PassPredictor{Step: cfg.passStep, MinElevation: cfg.minElevation, Illumination: cfg.illumination, logger: klog}
}

// SetLogger changes the default logger.
func (p *PassPredictor) SetLogger(logger kitlog.Logger) {
	p.logger = logger
}

// PredictPasses lists the passes of sat over observer in the coming days,
// dropping those which peak below minElevation degrees.
func PredictPasses(ctx context.Context, sat Satellite, observer ObserverLocation, from time.Time, days int, minElevation float64) ([]SatellitePass, error) {
	p := NewPassPredictor()
	p.MinElevation = minElevation
	return p.Predict(ctx, sat, observer, from, days)
}

// Predict scans the window [from, from+days) for passes of sat over
// observer. A pass starts at the rising horizon crossing, peaks at
// culmination and is only recorded once its setting crossing is found, so a
// pass still in progress at the end of the window is not returned. On
// cancellation the passes found so far are returned along with the context
// error.
func (p *PassPredictor) Predict(ctx context.Context, sat Satellite, observer ObserverLocation, from time.Time, days int) ([]SatellitePass, error) {
	if days <= 0 {
		return nil, InvalidParameterError{Name: "daysAhead", Value: float64(days)}
	}
	step := p.Step
	if step <= 0 {
		step = DefaultPassStep
	}
	if _, err := sat.Elements.StateAt(from, Earth.GM()); err != nil {
		return nil, err
	}
	stn := observer.Station("observer")
	until := from.Add(time.Duration(days) * 24 * time.Hour)
	p.logger.Log("level", "info", "action", "scanning", "satellite", sat.ID, "from", from.Format(time.RFC1123), "days", days)

	var passes []SatellitePass
	var cur SatellitePass
	var maxEl float64
	var maxElAt time.Time
	st := belowHorizon
	lastEl := math.NaN() // no crossing on the first sample
	lastT := from
	for t := from; !t.After(until); t = t.Add(step) {
		if err := ctx.Err(); err != nil {
			p.logger.Log("level", "warning", "action", "cancelled", "satellite", sat.ID, "passes", len(passes))
			return passes, err
		}
		_, el, _, err := p.look(sat, stn, t)
		if err != nil {
			return passes, err
		}
		if st == belowHorizon {
			if lastEl < 0 && el >= 0 {
				rise, err := p.findCrossing(sat, stn, lastT, t, true)
				if err != nil {
					return passes, err
				}
				_, _, riseAz, err := p.look(sat, stn, rise)
				if err != nil {
					return passes, err
				}
				cur = SatellitePass{SatelliteID: sat.ID, RiseTime: rise, RiseAzimuth: Rad2deg(riseAz)}
				maxEl, maxElAt = el, t
				st = rising
			}
		} else {
			if el > maxEl {
				maxEl, maxElAt = el, t
			}
			switch {
			case el < 0:
				pass, err := p.finalize(sat, stn, cur, lastT, t, maxElAt, step)
				if err != nil {
					return passes, err
				}
				if pass.MaxElevation >= p.MinElevation {
					passes = append(passes, pass)
				}
				st = belowHorizon
			case st == rising && el < lastEl:
				st = culminating
			case st == culminating:
				st = setting
			}
		}
		lastEl, lastT = el, t
	}
	p.logger.Log("level", "info", "action", "done", "satellite", sat.ID, "passes", len(passes))
	return passes, nil
}

// look samples the satellite once, returning range, elevation and azimuth
// (radians) from the station at dt.
func (p *PassPredictor) look(sat Satellite, stn Station, dt time.Time) (ρ, el, az float64, err error) {
	state, err := sat.Elements.StateAt(dt, Earth.GM())
	if err != nil {
		return
	}
	_, ρ, el, az = stn.RangeElAz(ECI2ECEF(state.Position, GMST(dt)))
	return
}

// findCrossing refines a horizon crossing bracketed by two scan samples by
// bisection. up selects the rising edge, otherwise the setting one. The
// returned instant is on the above-horizon side of the crossing.
func (p *PassPredictor) findCrossing(sat Satellite, stn Station, lo, hi time.Time, up bool) (time.Time, error) {
	for it := 0; it < crossingMaxIt && hi.Sub(lo) > crossingTol; it++ {
		mid := lo.Add(hi.Sub(lo) / 2)
		_, el, _, err := p.look(sat, stn, mid)
		if err != nil {
			return mid, err
		}
		if (el < 0) == up {
			lo = mid
		} else {
			hi = mid
		}
	}
	if up {
		return hi, nil
	}
	return lo, nil
}

// findCulmination fine-scans around the highest coarse sample at a tenth of
// the scan cadence. Elevation is smooth across a pass, so one refinement
// level is plenty. Returns the instant and elevation (radians) of the peak.
func (p *PassPredictor) findCulmination(sat Satellite, stn Station, around, lo, hi time.Time, step time.Duration) (time.Time, float64, error) {
	fine := step / 10
	if fine < time.Second {
		fine = time.Second
	}
	start, end := around.Add(-step), around.Add(step)
	if start.Before(lo) {
		start = lo
	}
	if end.After(hi) {
		end = hi
	}
	bestT, bestEl := around, math.Inf(-1)
	for t := start; !t.After(end); t = t.Add(fine) {
		_, el, _, err := p.look(sat, stn, t)
		if err != nil {
			return bestT, bestEl, err
		}
		if el > bestEl {
			bestT, bestEl = t, el
		}
	}
	return bestT, bestEl, nil
}

// finalize completes a pass once its setting crossing is bracketed: refines
// the set time, the culmination, and fills in magnitude and visibility at
// culmination.
func (p *PassPredictor) finalize(sat Satellite, stn Station, cur SatellitePass, before, after, coarsePeak time.Time, step time.Duration) (SatellitePass, error) {
	set, err := p.findCrossing(sat, stn, before, after, false)
	if err != nil {
		return cur, err
	}
	_, _, setAz, err := p.look(sat, stn, set)
	if err != nil {
		return cur, err
	}
	culmT, culmEl, err := p.findCulmination(sat, stn, coarsePeak, cur.RiseTime, set, step)
	if err != nil {
		return cur, err
	}
	ρ, _, _, err := p.look(sat, stn, culmT)
	if err != nil {
		return cur, err
	}
	cur.SetTime = set
	cur.SetAzimuth = Rad2deg(setAz)
	cur.CulminationTime = culmT
	cur.MaxElevation = Rad2deg(culmEl)
	refRange := sat.StdMagRange
	if refRange <= 0 {
		refRange = DefaultStdMagRange
	}
	cur.EstimatedMagnitude = sat.StdMag + 5*math.Log10(ρ/refRange)
	vis, err := p.visibleAt(sat, stn, culmT, culmEl)
	if err != nil {
		return cur, err
	}
	cur.IsVisible = vis
	return cur, nil
}

// visibleAt decides whether a culminating satellite is worth stepping
// outside for: it must be in sunlight while the observer's sky is dark.
// Without illumination checks, any pass peaking above 30° counts.
func (p *PassPredictor) visibleAt(sat Satellite, stn Station, dt time.Time, el float64) (bool, error) {
	if !p.Illumination {
		return Rad2deg(el) > 30, nil
	}
	state, err := sat.Elements.StateAt(dt, Earth.GM())
	if err != nil {
		return false, err
	}
	sun := sunECI(dt)
	if eclipsed(state.Position, sun) {
		return false, nil
	}
	_, _, sunEl, _ := stn.RangeElAz(ECI2ECEF(sun, GMST(dt)))
	return sunEl < twilightEl, nil
}

// sunECI returns the Sun's geocentric equatorial position pinned at one
// astronomical unit. The low precision apparent place is all horizon
// geometry needs.
func sunECI(dt time.Time) Vector3 {
	jde := julian.TimeToJD(dt.UTC())
	α, δ := solar.ApparentEquatorial(jde)
	return Vector3{δ.Cos() * α.Cos(), δ.Cos() * α.Sin(), δ.Sin()}.Scale(AU)
}

// eclipsed reports whether a satellite at rECI sits in the Earth's shadow,
// comparing the apparent angular radii of the Earth and the Sun as seen
// from the satellite against their angular separation.
func eclipsed(rECI, sun Vector3) bool {
	sdEarth := math.Asin(Earth.Radius / rECI.Norm())
	sdSun := math.Asin(Sun.Radius / sun.Sub(rECI).Norm())
	δ := sun.Angle(rECI.Scale(-1))
	if sdEarth < sdSun {
		return false
	}
	return sdEarth-sdSun-δ >= 0
}

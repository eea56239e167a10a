package orbital

import (
	"context"
	"math"
	"os"
	"time"

	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/kit/log"
)

const (
	// DefaultStepSize is the default step size of propagation.
	DefaultStepSize = 10 * time.Second
)

// IntegrationMethod selects the numerical integrator.
type IntegrationMethod uint8

const (
	// VelocityVerlet is the symplectic default, second order with bounded
	// energy drift over long spans.
	VelocityVerlet IntegrationMethod = iota
	// RK4 is a fixed-step Runge-Kutta 4, fourth order but not symplectic.
	RK4
)

func (m IntegrationMethod) String() string {
	switch m {
	case VelocityVerlet:
		return "velocity-verlet"
	case RK4:
		return "rk4"
	default:
		panic("unknown integration method")
	}
}

// BodyState fixes a gravitating body at an inertial position for the span of
// a propagation. The first body of a propagation is the primary: it sits at
// the frame center in the common case and its zonal harmonics are the ones
// applied by Perturbations.
type BodyState struct {
	Body     CelestialBody
	Position Vector3
}

// Propagator numerically integrates point-mass gravity from the configured
// bodies, plus optional perturbations. The zero value is not usable; call
// NewPropagator. A Propagator is safe for concurrent use as long as HistChan
// is nil.
type Propagator struct {
	Bodies []BodyState
	Perts  Perturbations
	Method IntegrationMethod
	// HistChan streams each computed state as the integration advances. A
	// started propagation closes the channel on return; rejected arguments
	// leave it open.
	HistChan chan<- StateVector
	logger   kitlog.Logger
}

// NewPropagator returns a velocity-Verlet propagator for the given bodies.
func NewPropagator(bodies ...BodyState) *Propagator {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "prop")
	return &Propagator{Bodies: bodies, Method: VelocityVerlet, logger: klog}
}

// SetLogger overrides the default stdout logger.
func (p *Propagator) SetLogger(l kitlog.Logger) {
	p.logger = l
}

// Propagate numerically integrates the initial state forward for the given
// duration, returning one state per timestep (initial state included, so
// ceil(duration/timestep)+1 entries). On cancellation the states integrated
// so far are returned along with the context's error.
func (p *Propagator) Propagate(ctx context.Context, initial StateVector, duration, timestep time.Duration) ([]StateVector, error) {
	if timestep <= 0 {
		return nil, InvalidParameterError{Name: "timestep", Value: timestep.Seconds()}
	}
	if duration <= 0 {
		return nil, InvalidParameterError{Name: "duration", Value: duration.Seconds()}
	}
	if len(p.Bodies) == 0 {
		return nil, InvalidParameterError{Name: "bodies", Value: 0, Reason: "at least one gravitating body required"}
	}
	if p.HistChan != nil {
		defer close(p.HistChan)
	}
	steps := int(math.Ceil(duration.Seconds() / timestep.Seconds()))
	p.logger.Log("level", "info", "status", "starting", "method", p.Method, "steps", steps, "step", timestep)

	var out []StateVector
	var err error
	switch p.Method {
	case RK4:
		out, err = p.propagateRK4(ctx, initial, timestep, steps)
	default:
		out, err = p.propagateVerlet(ctx, initial, timestep, steps)
	}
	if err != nil {
		p.logger.Log("level", "warning", "status", "cancelled", "dt", out[len(out)-1].Epoch, "err", err)
		return out, err
	}
	p.logger.Log("level", "info", "status", "finished", "duration", duration)
	return out, nil
}

func (p *Propagator) propagateVerlet(ctx context.Context, initial StateVector, timestep time.Duration, steps int) ([]StateVector, error) {
	out := make([]StateVector, 0, steps+1)
	out = append(out, initial)
	p.stream(initial)

	dt := timestep.Seconds()
	r, v := initial.Position, initial.Velocity
	acc := p.accel(r)
	collided := false
	for i := 1; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		// x_{n+1} = x_n + v_n Δt + ½ a_n Δt²
		r = r.Add(v.Scale(dt)).Add(acc.Scale(0.5 * dt * dt))
		// v_{n+1} = v_n + ½ (a_n + a_{n+1}) Δt
		accNext := p.accel(r)
		v = v.Add(acc.Add(accNext).Scale(0.5 * dt))
		acc = accNext

		state := StateVector{Position: r, Velocity: v, Epoch: initial.Epoch.Add(time.Duration(i) * timestep)}
		out = append(out, state)
		p.stream(state)
		collided = p.checkCollision(state, collided)
	}
	return out, nil
}

func (p *Propagator) propagateRK4(ctx context.Context, initial StateVector, timestep time.Duration, steps int) ([]StateVector, error) {
	integ := &rkIntegration{
		prop:  p,
		ctx:   ctx,
		state: initial,
		step:  timestep,
		steps: steps,
		out:   make([]StateVector, 0, steps+1),
	}
	integ.out = append(integ.out, initial)
	p.stream(initial)
	ode.NewRK4(0, timestep.Seconds(), integ).Solve() // Blocking.
	if integ.cancelled {
		return integ.out, ctx.Err()
	}
	return integ.out, nil
}

// accel returns the total acceleration at position r: point-mass gravity
// summed over all bodies, plus perturbations of the primary.
func (p *Propagator) accel(r Vector3) Vector3 {
	var a Vector3
	for _, b := range p.Bodies {
		rel := r.Sub(b.Position)
		d := rel.Norm()
		a = a.Add(rel.Scale(-b.Body.GM() / (d * d * d)))
	}
	if !p.Perts.isEmpty() {
		a = a.Add(p.Perts.Accel(p.Bodies[0].Body, r.Sub(p.Bodies[0].Position)))
	}
	return a
}

func (p *Propagator) stream(s StateVector) {
	if p.HistChan != nil {
		p.HistChan <- s
	}
}

// checkCollision logs surface crossings of the primary, once per descent.
func (p *Propagator) checkCollision(s StateVector, collided bool) bool {
	r := s.Position.Distance(p.Bodies[0].Position)
	radius := p.Bodies[0].Body.Radius
	if !collided && r < radius {
		p.logger.Log("level", "critical", "collided", p.Bodies[0].Body.Name, "dt", s.Epoch, "r", r, "radius", radius)
		return true
	}
	if collided && r > radius*1.1 {
		// Now further than the 10% dead zone
		p.logger.Log("level", "critical", "revived", p.Bodies[0].Body.Name, "dt", s.Epoch)
		return false
	}
	return collided
}

// Propagate integrates the initial state under the gravity of the given
// bodies using velocity-Verlet. It is the plain-function form of
// Propagator.Propagate.
func Propagate(ctx context.Context, initial StateVector, duration, timestep time.Duration, bodies []BodyState) ([]StateVector, error) {
	return NewPropagator(bodies...).Propagate(ctx, initial, duration, timestep)
}

// rkIntegration adapts a propagation run to the ode.Integrable contract. The
// epoch advances in SetState, not Stop, so the first step is not skipped.
type rkIntegration struct {
	prop      *Propagator
	ctx       context.Context
	state     StateVector
	step      time.Duration
	steps     int
	i         int
	out       []StateVector
	collided  bool
	cancelled bool
}

// GetState returns the state for the integrator.
func (a *rkIntegration) GetState() []float64 {
	return []float64{a.state.Position.X, a.state.Position.Y, a.state.Position.Z,
		a.state.Velocity.X, a.state.Velocity.Y, a.state.Velocity.Z}
}

// SetState sets the updated state.
func (a *rkIntegration) SetState(t float64, s []float64) {
	a.state = StateVector{Position: vec3(s[0:3]), Velocity: vec3(s[3:6]), Epoch: a.state.Epoch.Add(a.step)}
	a.out = append(a.out, a.state)
	a.prop.stream(a.state)
	a.collided = a.prop.checkCollision(a.state, a.collided)
}

// Stop implements the stop call of the integrator.
func (a *rkIntegration) Stop(t float64) bool {
	if err := a.ctx.Err(); err != nil {
		a.cancelled = true
		return true
	}
	if a.i >= a.steps {
		return true
	}
	a.i++
	return false
}

// Func is the two-body (plus perturbations) equation of motion.
func (a *rkIntegration) Func(t float64, f []float64) []float64 {
	acc := a.prop.accel(vec3(f[0:3]))
	return []float64{f[3], f[4], f[5], acc.X, acc.Y, acc.Z}
}

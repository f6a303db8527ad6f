package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/particles"
)

// controlTargetMin is the magnitude a control target needs before boids seek it.
// Below it the target reads as "no hand" and would otherwise pull the flock to the origin.
const controlTargetMin = 0.1

// seekEpsilon is the distance under which seek returns no force.
const seekEpsilon = 0.01

// BoidsParams holds flocking tunables.
type BoidsParams struct {
	DT                float64
	SeparationWeight  float64
	AlignmentWeight   float64
	CohesionWeight    float64
	TargetWeight      float64
	DesiredSeparation float64
	NeighborRadius    float64
	MaxSpeed          float64
	MaxForce          float64
	MinSpeed          float64
	BoundaryRadius    float64
	BoundaryForce     float64
	NeighborSamples   int
	MaxNeighbors      int
	ArrivalRadius     float64
	Size              SizeRange
}

// BoidsParamsFromConfig converts the boids config section.
func BoidsParamsFromConfig(cfg config.BoidsConfig, sim config.SimulationConfig) BoidsParams {
	return BoidsParams{
		DT:                sim.DT,
		SeparationWeight:  cfg.SeparationWeight,
		AlignmentWeight:   cfg.AlignmentWeight,
		CohesionWeight:    cfg.CohesionWeight,
		TargetWeight:      cfg.TargetWeight,
		DesiredSeparation: cfg.DesiredSeparation,
		NeighborRadius:    cfg.NeighborRadius,
		MaxSpeed:          cfg.MaxSpeed,
		MaxForce:          cfg.MaxForce,
		MinSpeed:          cfg.MinSpeed,
		BoundaryRadius:    cfg.BoundaryRadius,
		BoundaryForce:     cfg.BoundaryForce,
		NeighborSamples:   cfg.NeighborSamples,
		MaxNeighbors:      cfg.MaxNeighbors,
		ArrivalRadius:     cfg.ArrivalRadius,
		Size:              SizeRange{Base: float32(sim.BaseSize), Variation: float32(sim.SizeVariation)},
	}
}

// Neighbor is an accepted flockmate with precomputed offset data.
type Neighbor struct {
	Index int
	Away  r3.Vec  // self position minus neighbor position
	Dist  float64 // |Away|
}

// SphereFiller fills a buffer with points uniformly inside a sphere.
type SphereFiller interface {
	FillSphere(dst []float32, radius float64)
}

// FlockingSystem is the "boids" mode integrator.
type FlockingSystem struct {
	Params    BoidsParams
	colors    *ColorModel
	rng       *rand.Rand
	spawn     SphereFiller
	neighbors []Neighbor // scratch, reused per particle
}

// NewFlockingSystem creates the boids-mode integrator.
func NewFlockingSystem(params BoidsParams, colors *ColorModel, spawn SphereFiller, rng *rand.Rand) *FlockingSystem {
	return &FlockingSystem{
		Params:    params,
		colors:    colors,
		rng:       rng,
		spawn:     spawn,
		neighbors: make([]Neighbor, 0, 32),
	}
}

// Mode implements Integrator.
func (fs *FlockingSystem) Mode() Mode { return ModeBoids }

// Enter scatters every particle inside 0.8 of the boundary with a small
// random velocity, dropping any relation to the shape target.
func (fs *FlockingSystem) Enter(s *particles.Store) {
	fs.spawn.FillSphere(s.Positions, 0.8*fs.Params.BoundaryRadius)
	v := float32(fs.Params.MinSpeed)
	for j := range s.Velocities {
		s.Velocities[j] = (2*fs.rng.Float32() - 1) * v
	}
}

// Step advances every boid by one tick. Updates are applied in place, so
// later indices see the already-moved earlier ones.
func (fs *FlockingSystem) Step(s *particles.Store, in StepInput) {
	p := fs.Params
	n := s.Count
	norm := p.DT * frameNorm

	stride := fs.stride(n)
	phase := int(in.Tick % uint64(stride))
	seekTarget := r3.Norm(in.ControlTarget) > controlTargetMin

	for i := 0; i < n; i++ {
		pos := loadVec(s.Positions, i)
		vel := loadVec(s.Velocities, i)

		nbrs := fs.FindNeighbors(s, i, pos, stride, phase)

		force := r3.Scale(p.SeparationWeight, fs.Separation(nbrs))
		force = r3.Add(force, r3.Scale(p.AlignmentWeight, fs.Alignment(s, vel, nbrs)))
		force = r3.Add(force, r3.Scale(p.CohesionWeight, fs.Cohesion(s, pos, nbrs)))
		if seekTarget {
			force = r3.Add(force, r3.Scale(p.TargetWeight, fs.Seek(pos, in.ControlTarget)))
		}
		force = limit(force, p.MaxForce)

		vel = r3.Add(vel, r3.Scale(norm, force))
		vel = r3.Add(vel, r3.Scale(norm, fs.Boundary(pos)))
		vel = fs.clampSpeed(vel)
		pos = r3.Add(pos, r3.Scale(norm, vel))

		storeVec(s.Positions, i, pos)
		storeVec(s.Velocities, i, vel)

		s.Sizes[i] = p.Size.At(normSpeed(float32(r3.Norm(vel)), float32(p.MaxSpeed)))
		fs.colors.ByRank(s, i)
	}
}

// stride spaces candidate samples across the whole array.
func (fs *FlockingSystem) stride(n int) int {
	samples := fs.Params.NeighborSamples
	if samples <= 0 {
		return 1
	}
	st := n / samples
	if st < 1 {
		st = 1
	}
	return st
}

// FindNeighbors scans up to NeighborSamples indices spaced by stride from i
// and accepts up to MaxNeighbors of them within NeighborRadius. This is an
// index-sampling approximation, not a spatial query.
func (fs *FlockingSystem) FindNeighbors(s *particles.Store, i int, pos r3.Vec, stride, phase int) []Neighbor {
	p := fs.Params
	n := s.Count
	out := fs.neighbors[:0]

	samples := p.NeighborSamples
	if samples > n-1 {
		samples = n - 1
	}
	radius2 := p.NeighborRadius * p.NeighborRadius

	for k := 1; k <= samples && len(out) < p.MaxNeighbors; k++ {
		j := (i + k*stride + phase) % n
		if j == i {
			continue
		}
		away := r3.Sub(pos, loadVec(s.Positions, j))
		d2 := r3.Norm2(away)
		if d2 >= radius2 {
			continue
		}
		out = append(out, Neighbor{Index: j, Away: away, Dist: r3.Norm(away)})
	}

	fs.neighbors = out
	return out
}

// Separation steers away from neighbors closer than DesiredSeparation,
// weighting each by inverse distance.
func (fs *FlockingSystem) Separation(nbrs []Neighbor) r3.Vec {
	p := fs.Params
	var sum r3.Vec
	count := 0
	for _, nb := range nbrs {
		if nb.Dist >= p.DesiredSeparation || nb.Dist < epsilon {
			continue
		}
		sum = r3.Add(sum, r3.Scale(1/(nb.Dist*nb.Dist), nb.Away))
		count++
	}
	if count == 0 {
		return r3.Vec{}
	}
	sum = r3.Scale(1/float64(count), sum)
	steer := r3.Scale(p.MaxSpeed, unit(sum))
	return limit(steer, p.MaxForce)
}

// Alignment steers toward the average neighbor velocity.
func (fs *FlockingSystem) Alignment(s *particles.Store, vel r3.Vec, nbrs []Neighbor) r3.Vec {
	if len(nbrs) == 0 {
		return r3.Vec{}
	}
	var avg r3.Vec
	for _, nb := range nbrs {
		avg = r3.Add(avg, loadVec(s.Velocities, nb.Index))
	}
	avg = r3.Scale(1/float64(len(nbrs)), avg)
	return limit(r3.Sub(avg, vel), fs.Params.MaxForce)
}

// Cohesion seeks the neighbor centroid.
func (fs *FlockingSystem) Cohesion(s *particles.Store, pos r3.Vec, nbrs []Neighbor) r3.Vec {
	if len(nbrs) == 0 {
		return r3.Vec{}
	}
	var centroid r3.Vec
	for _, nb := range nbrs {
		centroid = r3.Add(centroid, loadVec(s.Positions, nb.Index))
	}
	centroid = r3.Scale(1/float64(len(nbrs)), centroid)
	return fs.Seek(pos, centroid)
}

// Seek returns a steering force toward target at MaxSpeed, slowing down
// linearly inside ArrivalRadius, capped at MaxForce.
func (fs *FlockingSystem) Seek(pos, target r3.Vec) r3.Vec {
	p := fs.Params
	delta := r3.Sub(target, pos)
	d := r3.Norm(delta)
	if d <= seekEpsilon {
		return r3.Vec{}
	}
	speed := p.MaxSpeed
	if d < p.ArrivalRadius {
		speed *= d / p.ArrivalRadius
	}
	return limit(r3.Scale(speed/d, delta), p.MaxForce)
}

// Boundary is a soft spring pulling particles beyond BoundaryRadius back
// toward the origin in proportion to the overshoot.
func (fs *FlockingSystem) Boundary(pos r3.Vec) r3.Vec {
	p := fs.Params
	d := r3.Norm(pos)
	if d <= p.BoundaryRadius || d < epsilon {
		return r3.Vec{}
	}
	return r3.Scale(-(d-p.BoundaryRadius)*p.BoundaryForce/d, pos)
}

// clampSpeed keeps |v| within [MinSpeed, MaxSpeed]. A stalled boid gets a
// random heading at MinSpeed.
func (fs *FlockingSystem) clampSpeed(v r3.Vec) r3.Vec {
	p := fs.Params
	speed := r3.Norm(v)
	switch {
	case speed < epsilon:
		if p.MinSpeed <= 0 {
			return r3.Vec{}
		}
		x, y, z := particles.RandomDirection(fs.rng)
		return r3.Scale(p.MinSpeed, r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)})
	case speed > p.MaxSpeed:
		return r3.Scale(p.MaxSpeed/speed, v)
	case speed < p.MinSpeed:
		return r3.Scale(p.MinSpeed/speed, v)
	}
	return v
}

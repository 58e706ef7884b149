package physics

import (
	"math"

	"github.com/Arti-Code/biosynth/common"
)

// cellID is the integer coordinate of a grid cell.
type cellID struct{ x, y int }

// body is the internal representation of one registered rigid body.
type body struct {
	handle   Handle
	pos      common.Vec2
	rot      float64
	radius   float64
	mass     float64
	material Material
	groups   common.GroupMask

	linearIntent  common.Vec2
	angularIntent float64
	kineticEnergy float64
}

// Grid is a concrete Collaborator backed by a uniform spatial hash. Bodies
// are circles; overlap resolution is a simple positional push-apart, which
// is sufficient fidelity for agents and plants that never need rotation-
// sensitive contact response.
type Grid struct {
	cellSize float64
	bounds   common.Vec2 // world width/height, used to clamp bodies

	bodies  map[Handle]*body
	cells   map[cellID][]Handle
	nextKey uint64
}

// NewGrid creates an empty spatial grid. cellSize should be on the order of
// a few agent radii; bounds gives the world extent used to keep bodies on
// the playing field.
func NewGrid(cellSize float64, bounds common.Vec2) *Grid {
	if cellSize < 1e-6 {
		cellSize = 1.0
	}
	return &Grid{
		cellSize: cellSize,
		bounds:   bounds,
		bodies:   make(map[Handle]*body),
		cells:    make(map[cellID][]Handle),
	}
}

func (g *Grid) cellOf(p common.Vec2) cellID {
	return cellID{
		x: int(math.Floor(p.X / g.cellSize)),
		y: int(math.Floor(p.Y / g.cellSize)),
	}
}

func (g *Grid) rebuild() {
	g.cells = make(map[cellID][]Handle, len(g.bodies))
	for h, b := range g.bodies {
		c := g.cellOf(b.pos)
		g.cells[c] = append(g.cells[c], h)
	}
}

func (g *Grid) AddDynamic(pos common.Vec2, rotation, radius float64, mat Material, groups common.GroupMask) Handle {
	g.nextKey++
	h := Handle(g.nextKey)
	mass := math.Pi * radius * radius
	g.bodies[h] = &body{
		handle:   h,
		pos:      pos,
		rot:      rotation,
		radius:   radius,
		mass:     mass,
		material: mat,
		groups:   groups,
	}
	g.rebuild()
	return h
}

func (g *Grid) Remove(handle Handle) {
	if _, ok := g.bodies[handle]; !ok {
		return
	}
	delete(g.bodies, handle)
	g.rebuild()
}

func (g *Grid) SetVelocityIntent(handle Handle, linear common.Vec2, angular float64) {
	b, ok := g.bodies[handle]
	if !ok {
		return
	}
	b.linearIntent = linear
	b.angularIntent = angular
}

// Step integrates every body by its latched velocity intent, resolves
// circle-circle overlaps with a positional correction, clamps bodies to the
// world bounds, and rebuilds the spatial index.
func (g *Grid) Step(dt float64) {
	for _, b := range g.bodies {
		delta := b.linearIntent.Scale(dt)
		b.pos = b.pos.Add(delta)
		b.rot += b.angularIntent * dt
		b.kineticEnergy = 0.5 * b.mass * b.linearIntent.Dot(b.linearIntent)

		if b.pos.X < 0 {
			b.pos.X = 0
		}
		if b.pos.Y < 0 {
			b.pos.Y = 0
		}
		if g.bounds.X > 0 && b.pos.X > g.bounds.X {
			b.pos.X = g.bounds.X
		}
		if g.bounds.Y > 0 && b.pos.Y > g.bounds.Y {
			b.pos.Y = g.bounds.Y
		}
	}
	g.rebuild()
	g.resolveOverlaps()
	g.rebuild()
}

// resolveOverlaps pushes overlapping bodies apart along their separation
// axis, proportionally to the other body's mass, so heavier bodies move less.
func (g *Grid) resolveOverlaps() {
	seen := make(map[[2]Handle]bool)
	for c := range g.cells {
		neighbors := g.neighborHandles(c)
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				a, b := neighbors[i], neighbors[j]
				if a == b {
					continue
				}
				key := [2]Handle{a, b}
				if a > b {
					key = [2]Handle{b, a}
				}
				if seen[key] {
					continue
				}
				seen[key] = true
				g.separate(a, b)
			}
		}
	}
}

func (g *Grid) neighborHandles(c cellID) []Handle {
	var out []Handle
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			out = append(out, g.cells[cellID{c.x + dx, c.y + dy}]...)
		}
	}
	return out
}

func (g *Grid) separate(ah, bh Handle) {
	a, aok := g.bodies[ah]
	b, bok := g.bodies[bh]
	if !aok || !bok {
		return
	}
	diff := a.pos.Sub(b.pos)
	dist := diff.Length()
	minDist := a.radius + b.radius
	if dist >= minDist || dist < 1e-9 {
		return
	}
	overlap := minDist - dist
	dir := diff.Normalize()
	totalMass := a.mass + b.mass
	if totalMass < 1e-9 {
		return
	}
	a.pos = a.pos.Add(dir.Scale(overlap * (b.mass / totalMass)))
	b.pos = b.pos.Sub(dir.Scale(overlap * (a.mass / totalMass)))
}

func (g *Grid) ObjectState(handle Handle) (ObjectState, bool) {
	b, ok := g.bodies[handle]
	if !ok {
		return ObjectState{}, false
	}
	return ObjectState{Position: b.pos, Rotation: b.rot, Mass: b.mass, KineticEnergy: b.kineticEnergy}, true
}

func (g *Grid) ObjectPosition(handle Handle) (common.Vec2, bool) {
	b, ok := g.bodies[handle]
	if !ok {
		return common.Vec2{}, false
	}
	return b.pos, true
}

func (g *Grid) ObjectSize(handle Handle) (float64, bool) {
	b, ok := g.bodies[handle]
	if !ok {
		return 0, false
	}
	return b.radius, true
}

func (g *Grid) ClosestInCone(from Handle, rng, halfAngle float64, forward common.Vec2, groupMask common.Group) (Handle, bool) {
	origin, ok := g.bodies[from]
	if !ok {
		return 0, false
	}
	forwardAngle := forward.Angle()

	var best Handle
	bestDist := math.MaxFloat64
	found := false

	for h, b := range g.bodies {
		if h == from {
			continue
		}
		if b.groups.Membership&groupMask == 0 {
			continue
		}
		toOther := b.pos.Sub(origin.pos)
		dist := toOther.Length()
		if dist > rng || dist < 1e-9 {
			continue
		}
		bearing := common.SignedAngleDiff(toOther.Angle(), forwardAngle)
		if math.Abs(bearing) > halfAngle {
			continue
		}
		if dist < bestDist {
			bestDist = dist
			best = h
			found = true
		}
	}
	return best, found
}

func (g *Grid) ContactsWithin(handle Handle, radius float64) []Handle {
	origin, ok := g.bodies[handle]
	if !ok {
		return nil
	}
	var out []Handle
	c := g.cellOf(origin.pos)
	span := int(math.Ceil(radius/g.cellSize)) + 1
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			for _, h := range g.cells[cellID{c.x + dx, c.y + dy}] {
				if h == handle {
					continue
				}
				other := g.bodies[h]
				if other == nil {
					continue
				}
				if origin.pos.Distance(other.pos) <= radius+other.radius {
					out = append(out, h)
				}
			}
		}
	}
	return out
}

var _ Collaborator = (*Grid)(nil)

// Package physics wraps a chipmunk space that owns agent positions when the
// world runs with a physics collaborator. Steering hands it velocity changes,
// the space integrates positions and resolves collisions with the arena
// walls.
//
// The ground plane maps onto the 2D space as X -> X and Z -> Y.
package physics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jakecoffman/cp"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
)

const (
	// agentGroup puts every agent shape in one collision group so agents
	// pass through each other and only bounce on walls.
	agentGroup uint = 1

	wallThickness = 0.5
)

var (
	// ErrUnknownBody is returned for an id that was never added or was removed.
	ErrUnknownBody = errors.New("physics: unknown body")
	// ErrDuplicateBody is returned when an id is added twice.
	ErrDuplicateBody = errors.New("physics: body already exists")
)

// BodyConfig describes the rigid body backing one agent.
type BodyConfig struct {
	Mass       float64 `json:"mass" yaml:"mass"`
	Radius     float64 `json:"radius" yaml:"radius"`
	Elasticity float64 `json:"elasticity" yaml:"elasticity"`
}

// DefaultBody is a unit mass disc of half a meter.
func DefaultBody() BodyConfig {
	return BodyConfig{Mass: 1, Radius: 0.5, Elasticity: 0.5}
}

type bodyInfo struct {
	body  *cp.Body
	shape *cp.Shape
}

// Space is safe for concurrent use.
type Space struct {
	mu     sync.Mutex
	space  *cp.Space
	bodies map[string]*bodyInfo
	walls  []*cp.Shape
}

// NewSpace returns an empty space without gravity.
func NewSpace() *Space {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	return &Space{
		space:  space,
		bodies: make(map[string]*bodyInfo),
	}
}

func toCP(v geometry.Vector3D) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Z}
}

func fromCP(v cp.Vector) geometry.Vector3D {
	return geometry.Vector3D{X: v.X, Z: v.Y}
}

// AddAgent creates the body for id at position with velocity.
func (s *Space) AddAgent(id string, position, velocity geometry.Vector3D, cfg BodyConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bodies[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBody, id)
	}
	mass := cfg.Mass
	if mass <= 0 {
		mass = 1
	}
	radius := cfg.Radius
	if radius <= 0 {
		radius = DefaultBody().Radius
	}

	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(toCP(position))
	body.SetVelocityVector(toCP(velocity))
	body.SetAngularVelocity(0)

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetElasticity(cfg.Elasticity)
	shape.SetFriction(0)
	shape.SetFilter(cp.ShapeFilter{Group: agentGroup, Categories: ^uint(0), Mask: ^uint(0)})

	s.space.AddBody(body)
	s.space.AddShape(shape)
	s.bodies[id] = &bodyInfo{body: body, shape: shape}
	return nil
}

// Remove deletes the body for id. It reports whether the body existed.
func (s *Space) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.bodies[id]
	if !ok {
		return false
	}
	s.space.RemoveShape(info.shape)
	s.space.RemoveBody(info.body)
	delete(s.bodies, id)
	return true
}

// Clear removes every agent body, keeping the walls.
func (s *Space) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, info := range s.bodies {
		s.space.RemoveShape(info.shape)
		s.space.RemoveBody(info.body)
		delete(s.bodies, id)
	}
}

// SetBounds encloses the arena [minX,maxX] x [minZ,maxZ] with static walls,
// replacing any previous ones. A degenerate rectangle removes the walls.
func (s *Space) SetBounds(minX, minZ, maxX, maxZ float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, wall := range s.walls {
		s.space.RemoveShape(wall)
	}
	s.walls = nil
	if maxX <= minX || maxZ <= minZ {
		return
	}

	segments := []struct{ a, b cp.Vector }{
		{cp.Vector{X: minX, Y: minZ}, cp.Vector{X: maxX, Y: minZ}},
		{cp.Vector{X: minX, Y: maxZ}, cp.Vector{X: maxX, Y: maxZ}},
		{cp.Vector{X: minX, Y: minZ}, cp.Vector{X: minX, Y: maxZ}},
		{cp.Vector{X: maxX, Y: minZ}, cp.Vector{X: maxX, Y: maxZ}},
	}
	for _, seg := range segments {
		wall := cp.NewSegment(s.space.StaticBody, seg.a, seg.b, wallThickness)
		wall.SetElasticity(1)
		wall.SetFriction(0)
		s.space.AddShape(wall)
		s.walls = append(s.walls, wall)
	}
}

// ApplyVelocityChange changes the velocity of id by dv through an impulse of
// dv*mass at the body's centre, so no spin is induced.
func (s *Space) ApplyVelocityChange(id string, dv geometry.Vector3D) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.bodies[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	impulse := toCP(dv).Mult(info.body.Mass())
	info.body.ApplyImpulseAtWorldPoint(impulse, info.body.Position())
	return nil
}

// SetVelocity overwrites the velocity of id.
func (s *Space) SetVelocity(id string, v geometry.Vector3D) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.bodies[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	info.body.SetVelocityVector(toCP(v))
	return nil
}

// Step advances the simulation by dt seconds.
func (s *Space) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.space.Step(dt)
}

// Position returns where the body of id is on the ground plane.
func (s *Space) Position(id string) (geometry.Vector3D, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.bodies[id]
	if !ok {
		return geometry.Vector3D{}, fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	return fromCP(info.body.Position()), nil
}

// Velocity returns the current velocity of the body of id.
func (s *Space) Velocity(id string) (geometry.Vector3D, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.bodies[id]
	if !ok {
		return geometry.Vector3D{}, fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	return fromCP(info.body.Velocity()), nil
}

// Len returns the number of agent bodies.
func (s *Space) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bodies)
}

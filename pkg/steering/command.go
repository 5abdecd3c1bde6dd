package steering

import "github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"

// Command is the acceleration requested by a behavior for one tick.
type Command struct {
	Linear  geometry.Vector3D `json:"linear"`
	Angular float64           `json:"angular"`
}

// IsZero reports whether the command requests no acceleration at all.
func (c Command) IsZero() bool {
	return c.Linear.IsZero() && c.Angular == 0
}

// Shape identifies how a renderer should draw an Annotation.
type Shape int

const (
	// ShapeCircle is a circle on the ground plane around Center.
	ShapeCircle Shape = iota
	// ShapePoint is a single marker at Center.
	ShapePoint
)

// Annotation is a piece of debug geometry a behavior exposes so a renderer can
// show its work (deceleration radius, predicted point, wander circle).
type Annotation struct {
	Shape  Shape             `json:"shape"`
	Label  string            `json:"label"`
	Center geometry.Vector3D `json:"center"`
	Radius float64           `json:"radius"`
}

// Circle builds a circle annotation.
func Circle(label string, center geometry.Vector3D, radius float64) Annotation {
	return Annotation{Shape: ShapeCircle, Label: label, Center: center, Radius: radius}
}

// Point builds a single marker annotation.
func Point(label string, center geometry.Vector3D) Annotation {
	return Annotation{Shape: ShapePoint, Label: label, Center: center}
}

// Output is the full result of evaluating a behavior.
type Output struct {
	Command
	Annotations []Annotation

	// PinnedOrientation, when set, replaces the agent orientation after
	// integration. Static agents use it to hold a fixed heading.
	PinnedOrientation *float64
}

func (o *Output) annotate(a ...Annotation) {
	o.Annotations = append(o.Annotations, a...)
}

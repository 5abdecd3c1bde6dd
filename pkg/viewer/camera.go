package viewer

import (
	"math"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
)

// camera maps the ground plane to screen pixels. +X goes right and +Z goes
// up, the world origin is at the centre of the field.
type camera struct {
	offsetX float64 // left edge of the field on screen
	scale   float64 // pixels per meter
	width   float64 // field size in meters
	depth   float64
}

func newCamera(offsetX, scale, width, depth float64) camera {
	return camera{offsetX: offsetX, scale: scale, width: width, depth: depth}
}

func (c camera) toScreen(p geometry.Vector3D) (float64, float64) {
	return c.offsetX + (p.X+c.width/2)*c.scale, (c.depth/2 - p.Z) * c.scale
}

func (c camera) toWorld(sx, sy float64) geometry.Vector3D {
	return geometry.NewVector((sx-c.offsetX)/c.scale-c.width/2, 0, c.depth/2-sy/c.scale)
}

func (c camera) pixels(meters float64) float64 { return meters * c.scale }

// screenSize is the field size in pixels.
func (c camera) screenSize() (int, int) {
	return int(math.Ceil(c.width * c.scale)), int(math.Ceil(c.depth * c.scale))
}

// spriteRotation turns an orientation into the GeoM rotation of a sprite
// drawn facing up. With +Z up on screen the heading (sin, cos) lands on
// the screen vector (sin, -cos), which is "up" rotated clockwise.
func spriteRotation(orientation float64) float64 {
	return orientation
}

package viewer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/simulation"
)

// Sprites are drawn facing up, which is heading 0 on screen.
var (
	hunterDesign = []string{
		".......C.......",
		"......CWC......",
		"......CBC......",
		".....BBBBB.....",
		"....B.B.B.B....",
		"...D..B.B..D...",
		"..D...Y.Y...D..",
		".D....F.F....D.",
	}
	hunterPalette = map[rune]color.RGBA{
		'C': {R: 0, G: 255, B: 255, A: 255},   // tip
		'W': {R: 255, G: 255, B: 255, A: 255}, // cockpit
		'B': {R: 0, G: 100, B: 255, A: 255},   // body
		'D': {R: 0, G: 0, B: 150, A: 255},     // wings
		'Y': {R: 255, G: 200, B: 0, A: 255},   // engines
		'F': {R: 255, G: 100, B: 0, A: 200},   // exhaust
	}

	wolfDesign = []string{
		"...E.....E...",
		"..EGE...EGE..",
		"..GGGGGGGGG..",
		".GGRGGGGGRGG.",
		".GGGGGGGGGGG.",
		"..GGGWWWGGG..",
		"...GGGGGGG...",
		"....GGGGG....",
		".....TTT.....",
		"......T......",
	}
	wolfPalette = map[rune]color.RGBA{
		'E': {R: 90, G: 90, B: 90, A: 255},    // ears
		'G': {R: 150, G: 150, B: 160, A: 255}, // fur
		'R': {R: 255, G: 60, B: 40, A: 255},   // eyes
		'W': {R: 240, G: 240, B: 240, A: 255}, // muzzle
		'T': {R: 110, G: 110, B: 120, A: 255}, // tail
	}
)

// generateSprite converts an ASCII grid into an Ebiten image
func generateSprite(design []string, palette map[rune]color.RGBA) *ebiten.Image {
	h := len(design)
	w := 0
	for _, row := range design {
		w = max(w, len(row))
	}
	img := ebiten.NewImage(w, h)

	for y, row := range design {
		for x, char := range row {
			if col, ok := palette[char]; ok {
				img.Set(x, y, col)
			}
		}
	}
	return img
}

func newSprites() map[simulation.Role]*ebiten.Image {
	return map[simulation.Role]*ebiten.Image{
		simulation.RoleHunter: generateSprite(hunterDesign, hunterPalette),
		simulation.RoleWolf:   generateSprite(wolfDesign, wolfPalette),
	}
}

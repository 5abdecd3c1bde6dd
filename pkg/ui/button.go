package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button is a clickable UI button. Selected buttons are drawn highlighted,
// the viewer uses it to show the running phase.
type Button struct {
	Label    string
	X, Y     float64
	Width    float64
	Height   float64
	Selected bool
	OnClick  func()

	pressed bool // mouse held since the last click

	// Styling
	BGColor       color.RGBA
	HoverColor    color.RGBA
	SelectedColor color.RGBA
}

// NewButton creates a new button instance
func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:         label,
		X:             x,
		Y:             y,
		Width:         width,
		Height:        height,
		OnClick:       onClick,
		BGColor:       color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor:    color.RGBA{R: 100, G: 150, B: 220, A: 255},
		SelectedColor: color.RGBA{R: 200, G: 140, B: 40, A: 255},
	}
}

func (b *Button) contains(mx, my int) bool {
	return inRect(mx, my, b.X, b.Y, b.Width, b.Height)
}

// Update checks for mouse interaction
func (b *Button) Update() {
	mx, my := ebiten.CursorPosition()
	b.handle(mx, my, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}

// handle fires OnClick once per press inside the button.
func (b *Button) handle(mx, my int, down bool) {
	if !down || !b.contains(mx, my) {
		b.pressed = false
		return
	}
	if !b.pressed && b.OnClick != nil {
		b.OnClick()
	}
	b.pressed = true
}

// Draw renders the button
func (b *Button) Draw(screen *ebiten.Image) {
	mx, my := ebiten.CursorPosition()

	bgColor := b.BGColor
	switch {
	case b.Selected:
		bgColor = b.SelectedColor
	case b.contains(mx, my):
		bgColor = b.HoverColor
	}

	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.Height),
		bgColor, true)
	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.Height),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+6), int(b.Y+(b.Height-16)/2))
}

func inRect(mx, my int, x, y, w, h float64) bool {
	fx, fy := float64(mx), float64(my)
	return fx >= x && fx <= x+w && fy >= y && fy <= y+h
}

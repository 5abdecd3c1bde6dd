package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	margin        = 10.0
)

// Widget is implemented by everything a Panel can lay out.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	height() float64
	moveTo(y float64)
}

func (b *Button) height() float64 { return b.Height + 5 }
func (b *Button) moveTo(y float64) { b.Y = y }

func (c *Checkbox) height() float64 { return c.Size + 8 }
func (c *Checkbox) moveTo(y float64) { c.Y = y }

type section struct {
	title string
	start int // first widget index
	end   int // widget index after the last one
}

// Panel stacks widgets in titled sections and scrolls with the mouse wheel.
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	ScrollOffset  float64

	widgets  []Widget
	sections []section

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA
}

// NewPanel creates an empty panel
func NewPanel(title string, x, y, width, height float64) *Panel {
	return &Panel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new section, closing the previous one.
func (p *Panel) AddSection(title string) {
	p.closeSection()
	p.sections = append(p.sections, section{title: title, start: len(p.widgets), end: -1})
}

func (p *Panel) closeSection() {
	if n := len(p.sections); n > 0 && p.sections[n-1].end < 0 {
		p.sections[n-1].end = len(p.widgets)
	}
}

// AddButton appends a full width button to the current section.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+margin, 0, p.Width-2*margin, 20, label, onClick)
	p.add(b)
	return b
}

// AddCheckbox appends a checkbox to the current section.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+margin, 0, label, value)
	p.add(c)
	return c
}

func (p *Panel) add(w Widget) {
	if len(p.sections) == 0 {
		p.sections = append(p.sections, section{start: 0, end: -1})
	}
	p.widgets = append(p.widgets, w)
	p.layout()
}

// layout places every widget according to the scroll offset.
func (p *Panel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		if s.title != "" {
			y += sectionHeight
		}
		end := s.end
		if end < 0 {
			end = len(p.widgets)
		}
		for _, w := range p.widgets[s.start:end] {
			w.moveTo(y)
			y += w.height()
		}
	}
}

// ContentHeight is the height needed to show every widget without scrolling.
func (p *Panel) ContentHeight() float64 {
	h := titleHeight
	for _, s := range p.sections {
		if s.title != "" {
			h += sectionHeight
		}
	}
	for _, w := range p.widgets {
		h += w.height()
	}
	return h
}

// Scroll moves the content by dy pixels, clamped to the content.
func (p *Panel) Scroll(dy float64) {
	maxScroll := max(p.ContentHeight()-p.Height, 0)
	p.ScrollOffset = min(max(p.ScrollOffset+dy, 0), maxScroll)
	p.layout()
}

// Update handles scrolling and input for all widgets
func (p *Panel) Update() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		p.Scroll(-dy * 20)
	}
	for _, w := range p.widgets {
		w.Update()
	}
}

// Draw renders the panel and the widgets inside its bounds.
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+5))

	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		if s.title != "" {
			if p.visible(y, sectionHeight) {
				vector.FillRect(screen,
					float32(p.X+5), float32(y),
					float32(p.Width-10), 20,
					color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
				ebitenutil.DebugPrintAt(screen, s.title, int(p.X+margin), int(y+3))
			}
			y += sectionHeight
		}
		end := s.end
		if end < 0 {
			end = len(p.widgets)
		}
		for _, w := range p.widgets[s.start:end] {
			if p.visible(y, w.height()) {
				w.Draw(screen)
			}
			y += w.height()
		}
	}
}

func (p *Panel) visible(y, h float64) bool {
	return y >= p.Y+titleHeight-5 && y+h <= p.Y+p.Height
}

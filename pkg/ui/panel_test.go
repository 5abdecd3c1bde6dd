package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButton_ClicksOncePerPress(t *testing.T) {
	clicks := 0
	b := NewButton(10, 10, 100, 20, "Seek", func() { clicks++ })

	b.handle(50, 20, true)
	b.handle(50, 20, true)
	assert.Equal(t, 1, clicks, "holding the button is a single click")

	b.handle(50, 20, false)
	b.handle(50, 20, true)
	assert.Equal(t, 2, clicks)

	b.handle(500, 20, false)
	b.handle(500, 20, true)
	assert.Equal(t, 2, clicks, "outside the button")
}

func TestCheckbox_Toggle(t *testing.T) {
	c := NewCheckbox(0, 0, "Annotations", false)
	var seen []bool
	c.OnChange = func(v bool) { seen = append(seen, v) }

	c.handle(5, 5, true)
	c.handle(5, 5, true)
	c.handle(5, 5, false)
	c.handle(5, 5, true)
	assert.False(t, c.Value)
	assert.Equal(t, []bool{true, false}, seen)
}

func TestPanel_Layout(t *testing.T) {
	p := NewPanel("Phases", 0, 0, 200, 100)
	p.AddSection("Phases")
	first := p.AddButton("1: Seek", nil)
	second := p.AddButton("2: Flee", nil)
	p.AddSection("Display")
	box := p.AddCheckbox("Annotations", true)

	assert.Equal(t, titleHeight+sectionHeight, first.Y)
	assert.Equal(t, first.Y+first.height(), second.Y)
	assert.Equal(t, second.Y+second.height()+sectionHeight, box.Y)

	want := titleHeight + 2*sectionHeight + first.height() + second.height() + box.height()
	require.Equal(t, want, p.ContentHeight())

	p.Scroll(1000)
	assert.Equal(t, want-p.Height, p.ScrollOffset)
	assert.Equal(t, titleHeight+sectionHeight-p.ScrollOffset, first.Y)

	p.Scroll(-1000)
	assert.Equal(t, 0.0, p.ScrollOffset)
}

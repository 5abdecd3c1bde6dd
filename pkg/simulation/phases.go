package simulation

import (
	"errors"
	"fmt"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/steering"
)

// ErrUnknownPhase is returned for a phase number outside 0..9.
var ErrUnknownPhase = errors.New("simulation: unknown phase")

// Phase is a scene preset selected with the number keys. Entering a phase
// removes every agent and spawns the phase's cast.
type Phase int

const (
	PhaseRestart Phase = iota
	PhaseSeek
	PhaseFlee
	PhasePursue
	PhaseEvade
	PhaseFace
	PhaseAlign
	PhaseWander
	PhaseStatic
	PhaseScripted
)

type castMember struct {
	spawner int
	role    Role
	kind    steering.Kind
	target  int // index in the cast, -1 for none
}

type phaseDef struct {
	name      string
	narration string
	cast      []castMember
}

var phaseTable = map[Phase]phaseDef{
	PhaseSeek: {
		name:      "Seek",
		narration: "The hunter seeks the fleeing wolf",
		cast: []castMember{
			{0, RoleHunter, steering.KindSeek, 1},
			{1, RoleWolf, steering.KindFlee, 0},
		},
	},
	PhaseFlee: {
		name:      "Flee",
		narration: "The hunter flees a static wolf",
		cast: []castMember{
			{0, RoleHunter, steering.KindFlee, 1},
			{1, RoleWolf, steering.KindStatic, 0},
		},
	},
	PhasePursue: {
		name:      "Pursue",
		narration: "The wolf pursues the evading hunter",
		cast: []castMember{
			{0, RoleWolf, steering.KindPursueWithArrive, 1},
			{1, RoleHunter, steering.KindEvade, 0},
		},
	},
	PhaseEvade: {
		name:      "Evade",
		narration: "The hunter evades a static wolf",
		cast: []castMember{
			{0, RoleHunter, steering.KindEvade, 1},
			{1, RoleWolf, steering.KindStatic, 0},
		},
	},
	PhaseFace: {
		name:      "Face",
		narration: "The hunter turns to face a static wolf",
		cast: []castMember{
			{0, RoleHunter, steering.KindFace, 1},
			{1, RoleWolf, steering.KindStatic, -1},
		},
	},
	PhaseAlign: {
		name:      "Align",
		narration: "The hunter aligns with the wolf's heading",
		cast: []castMember{
			{0, RoleHunter, steering.KindAlign, 1},
			{1, RoleWolf, steering.KindStatic, 0},
		},
	},
	PhaseWander: {
		name:      "Wander",
		narration: "The wolf wanders around",
		cast: []castMember{
			{1, RoleWolf, steering.KindWander, -1},
		},
	},
	PhaseStatic: {
		name:      "Static",
		narration: "A static wolf holds its heading",
		cast: []castMember{
			{0, RoleWolf, steering.KindStatic, -1},
		},
	},
	PhaseScripted: {
		name:      "Scripted",
		narration: "The wolf follows a scripted movement",
		cast: []castMember{
			{0, RoleWolf, steering.KindScripted, -1},
		},
	},
}

// ParsePhase converts a number key into a Phase.
func ParsePhase(n int) (Phase, error) {
	p := Phase(n)
	if p == PhaseRestart {
		return p, nil
	}
	if _, ok := phaseTable[p]; !ok {
		return PhaseRestart, fmt.Errorf("%w: %d", ErrUnknownPhase, n)
	}
	return p, nil
}

func (p Phase) String() string {
	if p == PhaseRestart {
		return "Restart"
	}
	if def, ok := phaseTable[p]; ok {
		return def.name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Narration describes what happens in the phase.
func (p Phase) Narration() string {
	return phaseTable[p].narration
}

// Phases lists the selectable scene presets in key order.
func Phases() []Phase {
	return []Phase{
		PhaseSeek, PhaseFlee, PhasePursue, PhaseEvade, PhaseFace,
		PhaseAlign, PhaseWander, PhaseStatic, PhaseScripted,
	}
}

// Help is the on-screen key legend.
func Help() string {
	s := "Press"
	for _, p := range Phases() {
		s += fmt.Sprintf(" %d: %s,", int(p), p)
	}
	return s + " 0: Restart"
}

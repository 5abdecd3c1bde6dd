// Package viewer renders world snapshots with ebiten and turns keyboard and
// mouse input into messages for the world actor.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/actor"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/steering"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/ui"
)

const (
	panelWidth  = 220.0
	pixelsPerM  = 20.0
	phaseAskTTL = 2 * time.Second
)

var (
	fieldColor      = color.RGBA{R: 30, G: 45, B: 35, A: 255}
	annotationColor = color.RGBA{R: 255, G: 220, B: 80, A: 200}
	targetLineColor = color.RGBA{R: 255, G: 255, B: 255, A: 60}
	digitKeys       = [...]ebiten.Key{
		ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
		ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
	}
)

// Game is the ebiten.Game of the steering demo. It never touches the world
// directly: ticks and phase changes are messages to the world actor and
// frames come back on the snapshot channel.
type Game struct {
	ctx        context.Context
	logger     *zap.Logger
	worldPID   *actor.PID
	snapshotCh <-chan *simulation.Snapshot
	lastState  *simulation.Snapshot
	tick       *durationpb.Duration
	cam        camera
	sprites    map[simulation.Role]*ebiten.Image

	// UI Controls
	panel        *ui.Panel
	phaseButtons map[simulation.Phase]*ui.Button
	annotations  *ui.Checkbox
	labels       *ui.Checkbox
	paused       *ui.Checkbox

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame builds the viewer for a world actor. cfg gives the field size,
// the tick length and the initial display options.
func NewGame(ctx context.Context, cfg *simulation.Config, worldPID *actor.PID, snapshotCh <-chan *simulation.Snapshot, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Game{
		ctx:          ctx,
		logger:       logger,
		worldPID:     worldPID,
		snapshotCh:   snapshotCh,
		lastState:    &simulation.Snapshot{}, // Avoid nil pointer
		tick:         durationpb.New(time.Duration(cfg.TickSeconds() * float64(time.Second))),
		cam:          newCamera(panelWidth, pixelsPerM, cfg.WorldWidth, cfg.WorldDepth),
		sprites:      newSprites(),
		phaseButtons: make(map[simulation.Phase]*ui.Button),
	}

	_, fieldHeight := g.cam.screenSize()
	g.panel = ui.NewPanel("Steering behaviors", 0, 0, panelWidth, float64(fieldHeight))
	g.panel.AddSection("Phases")
	for _, p := range append(simulation.Phases(), simulation.PhaseRestart) {
		g.phaseButtons[p] = g.panel.AddButton(fmt.Sprintf("%d: %s", int(p), p), func() { g.selectPhase(p) })
	}
	g.panel.AddSection("Display")
	g.annotations = g.panel.AddCheckbox("Annotations", cfg.ShowAnnotations)
	g.labels = g.panel.AddCheckbox("Labels", true)
	g.paused = g.panel.AddCheckbox("Pause", false)
	return g
}

// Size is the window size in pixels.
func (g *Game) Size() (int, int) {
	w, h := g.cam.screenSize()
	return w + int(panelWidth), h
}

func (g *Game) selectPhase(p simulation.Phase) {
	go func() {
		reply, err := actor.Ask(g.ctx, g.worldPID, wrapperspb.Int32(int32(p)), phaseAskTTL)
		if err != nil {
			g.logger.Warn("phase change failed", zap.Stringer("phase", p), zap.Error(err))
			return
		}
		g.logger.Debug("phase selected", zap.Any("reply", reply))
	}()
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	g.panel.Update()
	for i, key := range digitKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.selectPhase(simulation.Phase(i))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := actor.Tell(g.ctx, g.worldPID, wrapperspb.String("")); err != nil {
			g.logger.Warn("reload request failed", zap.Error(err))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused.Value = !g.paused.Value
	}

	// Retrieve Latest State (Non-blocking)
	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
	default:
	}
	for p, b := range g.phaseButtons {
		b.Selected = p == g.lastState.Phase && p != simulation.PhaseRestart
	}

	if !g.paused.Value {
		if err := actor.Tell(g.ctx, g.worldPID, g.tick); err != nil {
			return fmt.Errorf("world actor unreachable: %w", err)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	w, h := g.cam.screenSize()
	vector.FillRect(screen, float32(panelWidth), 0, float32(w), float32(h), fieldColor, false)

	byID := make(map[string]int, len(g.lastState.Agents))
	for i, a := range g.lastState.Agents {
		byID[a.ID] = i
	}
	for _, a := range g.lastState.Agents {
		if i, ok := byID[a.TargetID]; ok {
			x0, y0 := g.cam.toScreen(a.State.Position)
			x1, y1 := g.cam.toScreen(g.lastState.Agents[i].State.Position)
			vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1, targetLineColor, true)
		}
	}
	for _, a := range g.lastState.Agents {
		if g.annotations.Value {
			g.drawAnnotations(screen, a.Annotations)
		}
		g.drawAgent(screen, a)
	}

	g.panel.Draw(screen)

	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("%s: %s", g.lastState.Phase, g.lastState.Phase.Narration()),
		int(panelWidth)+10, 10)
	ebitenutil.DebugPrintAt(screen, simulation.Help()+", R: reload, Space: pause", int(panelWidth)+10, h-20)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nTick: %d\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.lastState.Tick,
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, int(panelWidth)+w-130, 10)
}

func (g *Game) drawAgent(screen *ebiten.Image, a simulation.AgentView) {
	sprite, ok := g.sprites[a.Role]
	if !ok {
		sprite = g.sprites[simulation.RoleWolf]
	}
	x, y := g.cam.toScreen(a.State.Position)

	op := &ebiten.DrawImageOptions{}
	sw, sh := sprite.Bounds().Dx(), sprite.Bounds().Dy()
	op.GeoM.Translate(-float64(sw)/2, -float64(sh)/2)
	op.GeoM.Scale(2, 2)
	op.GeoM.Rotate(spriteRotation(a.State.Orientation))
	op.GeoM.Translate(x, y)
	screen.DrawImage(sprite, op)

	if g.labels.Value {
		ebitenutil.DebugPrintAt(screen, a.Label, int(x)+12, int(y)+8)
	}
}

func (g *Game) drawAnnotations(screen *ebiten.Image, annotations []steering.Annotation) {
	for _, an := range annotations {
		x, y := g.cam.toScreen(an.Center)
		switch an.Shape {
		case steering.ShapeCircle:
			vector.StrokeCircle(screen, float32(x), float32(y), float32(g.cam.pixels(an.Radius)), 1, annotationColor, true)
		case steering.ShapePoint:
			vector.FillCircle(screen, float32(x), float32(y), 3, annotationColor, true)
		}
		if an.Label != "" {
			ebitenutil.DebugPrintAt(screen, an.Label, int(x)+4, int(y)-16)
		}
	}
}

func (g *Game) Layout(_, _ int) (int, int) { return g.Size() }

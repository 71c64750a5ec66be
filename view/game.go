// Package view adapts a Board/Engine pair to the ebiten.Game interface:
// it draws the visible window of tiles as colored quads and reads
// keyboard input to move a cursor and place tiles. It is the one
// concrete rendering seam the simulation core exposes; texture loading,
// menus and the rest of a real editor UI live outside this package.
package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/circuitworks/logicsim/board"
	"github.com/circuitworks/logicsim/engine"
	"github.com/circuitworks/logicsim/tiles"
)

const tilePixels = 16

// Game drives one simulation session: it owns the Board and Engine and
// implements ebiten.Game so it can be handed directly to ebiten.RunGame.
type Game struct {
	Board  *board.Board
	Engine *engine.Engine

	cursorX, cursorY int32
	tool             tiles.Kind
	toolDir          tiles.Direction
	running          bool

	screenW, screenH int
}

// NewGame returns a Game over b (and an Engine driving it), sized to show
// screenW x screenH pixels.
func NewGame(b *board.Board, screenW, screenH int) *Game {
	return &Game{
		Board:   b,
		Engine:  engine.New(b),
		tool:    tiles.WireStraight,
		screenW: screenW,
		screenH: screenH,
	}
}

// Layout returns the fixed logical resolution of the viewport, forcing
// ebiten to do the scaling rather than reacting to window resize events
// here.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}

// Update polls input once per frame: arrow keys move the cursor, number
// keys 1-9 pick a placement tool, R rotates the tool's direction, space
// places the current tool under the cursor, and Enter toggles whether
// Update also advances the simulation each frame.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.cursorY--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.cursorY++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		g.cursorX--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		g.cursorX++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.toolDir = (g.toolDir + 1) % 4
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.running = !g.running
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if err := g.Board.SetTile(g.cursorX, g.cursorY, tiles.TileData{Kind: g.tool, Direction: g.toolDir}); err != nil {
			return err
		}
		if err := g.Engine.RegisterTile(g.cursorX, g.cursorY); err != nil {
			return err
		}
	}
	for i, k := range toolKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.tool = toolKinds[i]
		}
	}

	if g.running {
		return g.Engine.Tick()
	}
	return nil
}

var toolKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.Key5, ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

var toolKinds = []tiles.Kind{
	tiles.WireStraight, tiles.WireCorner, tiles.WireTee, tiles.WireJunction,
	tiles.InSwitch, tiles.InButton, tiles.OutLed, tiles.GateAnd, tiles.GateOr,
}

// Draw renders the tiles visible in the current window, color-coded by
// kind and state, plus a status line and the cursor.
func (g *Game) Draw(screen *ebiten.Image) {
	tilesW := g.screenW / tilePixels
	tilesH := g.screenH / tilePixels
	originX := g.cursorX - int32(tilesW/2)
	originY := g.cursorY - int32(tilesH/2)

	for ty := 0; ty < tilesH; ty++ {
		for tx := 0; tx < tilesW; tx++ {
			x := originX + int32(tx)
			y := originY + int32(ty)
			td, err := g.Board.TileAt(x, y)
			if err != nil {
				continue
			}
			if td.Kind == tiles.Blank {
				continue
			}
			px := float32(tx * tilePixels)
			py := float32(ty * tilePixels)
			vector.DrawFilledRect(screen, px, py, tilePixels-1, tilePixels-1, colorFor(td), false)
		}
	}

	cx := float32((tilesW/2)*tilePixels)
	cy := float32((tilesH/2)*tilePixels)
	vector.StrokeRect(screen, cx, cy, tilePixels-1, tilePixels-1, 1, color.White, false)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("tool=%v dir=%v cursor=(%d,%d) running=%v conflicts=%d",
		g.tool, g.toolDir, g.cursorX, g.cursorY, g.running, g.Engine.ConflictCount))
}

func colorFor(td tiles.TileData) color.Color {
	switch {
	case td.Kind == tiles.OutLed:
		if td.State1 == tiles.High {
			return color.RGBA{255, 60, 60, 255}
		}
		return color.RGBA{80, 20, 20, 255}
	case td.Kind.IsGate():
		return color.RGBA{120, 120, 200, 255}
	case td.Kind.IsInput():
		if td.State1 == tiles.High {
			return color.RGBA{250, 210, 60, 255}
		}
		return color.RGBA{120, 100, 30, 255}
	case td.Kind.IsWire():
		switch td.State1 {
		case tiles.High:
			return color.RGBA{60, 220, 60, 255}
		case tiles.Middle:
			return color.RGBA{220, 160, 60, 255}
		default:
			return color.RGBA{60, 90, 60, 255}
		}
	default:
		return color.RGBA{150, 150, 150, 255}
	}
}

// Package engine implements the per-tick traversal that turns a static
// board of tiles into a running circuit: gate evaluation, Low/High wire
// propagation and LED lighting, run in that fixed order every tick.
package engine

import (
	"log"
	"os"

	"github.com/circuitworks/logicsim/board"
	"github.com/circuitworks/logicsim/chunk"
	"github.com/circuitworks/logicsim/tiles"
)

// Engine drives ticks across a Board. It owns no tile state of its own —
// everything it reads or writes lives in the Board's chunks — only the
// per-run conflict counter and a queue of buttons waiting to decay back
// to Low.
type Engine struct {
	Board  *board.Board
	Logger *log.Logger

	// ConflictCount counts conflicting-driver events across the engine's
	// whole lifetime: one per connected wire component per tick in which
	// disagreeing non-Middle drivers meet, and only while
	// Board.ExtraLogicStates is on.
	ConflictCount uint64

	pendingLowButtons []tileRef
}

// New returns an Engine over b, logging to stderr by default.
func New(b *board.Board) *Engine {
	return &Engine{
		Board:  b,
		Logger: log.New(os.Stderr, "engine: ", log.LstdFlags),
	}
}

type tileRef struct {
	X, Y int32
}

func neighborCoord(x, y int32, d tiles.Direction) (int32, int32) {
	switch d {
	case tiles.North:
		return x, y - 1
	case tiles.East:
		return x + 1, y
	case tiles.South:
		return x, y + 1
	default: // tiles.West
		return x - 1, y
	}
}

// RegisterTile classifies the tile at (x, y) and marks it pending in the
// category the traversal phases use to find it, so newly placed or
// loaded tiles participate in the next tick without a full-board scan.
func (e *Engine) RegisterTile(x, y int32) error {
	c, err := e.Board.ChunkAt(x, y)
	if err != nil {
		return err
	}
	idx := board.LocalIndexOf(x, y)
	switch k := c.TileAt(idx).Kind; {
	case k.IsGate():
		c.MarkPending(chunk.CategoryGate, idx)
	case k.IsInput():
		c.MarkPending(chunk.CategoryInput, idx)
	case k == tiles.OutLed:
		c.MarkPending(chunk.CategoryLED, idx)
	case k.IsWire():
		c.MarkPending(chunk.CategoryWire, idx)
	}
	return nil
}

// QueueButtonDecay schedules the button at (x, y) to settle back to Low
// on the next Tick, modeling a momentary press rather than a latch.
func (e *Engine) QueueButtonDecay(x, y int32) {
	e.pendingLowButtons = append(e.pendingLowButtons, tileRef{x, y})
}

// Tick runs the four ordered phases once: gate evaluation, off-turning
// (Low) propagation, on-turning (High/Middle) propagation, and LED
// propagation.
func (e *Engine) Tick() error {
	e.decayButtons()

	lowSources, highSources, err := e.evaluateGates()
	if err != nil {
		return err
	}
	lowInputs, err := e.collectInputSources(func(s tiles.State) bool { return s == tiles.Low })
	if err != nil {
		return err
	}
	highInputs, err := e.collectInputSources(func(s tiles.State) bool { return s == tiles.High || s == tiles.Middle })
	if err != nil {
		return err
	}
	lowSources = append(lowSources, lowInputs...)
	highSources = append(highSources, highInputs...)

	driven := make(map[chanKey]*driveState)
	comps := newComponentTracker()
	resolved := make(map[chanKey]tiles.State)
	if err := e.propagate(lowSources, driven, comps, resolved); err != nil {
		return err
	}
	if err := e.propagate(highSources, driven, comps, resolved); err != nil {
		return err
	}

	if err := e.propagateLEDs(); err != nil {
		return err
	}
	return nil
}

func (e *Engine) decayButtons() {
	pending := e.pendingLowButtons
	e.pendingLowButtons = nil
	for _, ref := range pending {
		c, err := e.Board.ChunkAt(ref.X, ref.Y)
		if err != nil {
			continue
		}
		idx := board.LocalIndexOf(ref.X, ref.Y)
		td := c.TileAt(idx)
		if td.Kind != tiles.InButton {
			continue
		}
		td.State1 = tiles.Low
		c.SetTile(idx, td)
	}
}

// source describes a control tile (gate output or input tile) that will
// drive its connected sides with a fixed state this tick.
type source struct {
	x, y  int32
	sides [4]bool
	state tiles.State
}

// evaluateGates runs phase 1. Every pending gate computes its next state
// from this tick's current neighbor outputs; results are buffered and
// only committed to the board after every gate has been read, so no gate
// observes another gate's new output within the same tick.
func (e *Engine) evaluateGates() (lowSources, highSources []source, err error) {
	type result struct {
		ref                tileRef
		next               tiles.State
		leftConn, rightConn bool
	}
	var results []result

	for _, cc := range e.Board.ResidentChunks() {
		c, err := e.Board.ChunkAt(cc.X*chunk.Width, cc.Y*chunk.Width)
		if err != nil {
			return nil, nil, err
		}
		for _, idx := range c.PendingIndices(chunk.CategoryGate) {
			lx, ly := chunk.Coords(idx)
			x := cc.X*chunk.Width + int32(lx)
			y := cc.Y*chunk.Width + int32(ly)
			td := c.TileAt(idx)
			if !td.Kind.IsGate() {
				c.ClearPending(chunk.CategoryGate, idx)
				continue
			}
			in := tiles.GateInputs{
				Front: e.readNeighborOutput(x, y, td.Direction),
				Left:  e.readNeighborOutput(x, y, (td.Direction+3)%4),
				Right: e.readNeighborOutput(x, y, (td.Direction+1)%4),
			}
			next, leftConn, rightConn := tiles.EvaluateGate(td.Kind, in, e.Board.ExtraLogicStates)
			results = append(results, result{tileRef{x, y}, next, leftConn, rightConn})
		}
	}

	for _, r := range results {
		c, err := e.Board.ChunkAt(r.ref.X, r.ref.Y)
		if err != nil {
			return nil, nil, err
		}
		idx := board.LocalIndexOf(r.ref.X, r.ref.Y)
		td := c.TileAt(idx)
		changed := td.State1 != r.next
		td.State1 = r.next
		td.Meta = encodeConnectorMeta(r.leftConn, r.rightConn, changed)
		c.SetTile(idx, td)

		var sides [4]bool
		sides[tiles.Opposite(td.Direction)] = true
		src := source{r.ref.X, r.ref.Y, sides, r.next}
		switch r.next {
		case tiles.Low:
			lowSources = append(lowSources, src)
		case tiles.High, tiles.Middle:
			highSources = append(highSources, src)
		}
	}
	return lowSources, highSources, nil
}

func encodeConnectorMeta(left, right, connectorChanged bool) byte {
	var m byte
	if connectorChanged {
		m |= 1
	}
	if left {
		m |= 2
	}
	if right {
		m |= 4
	}
	return m
}

// readNeighborOutput reads the state the neighbor on side d of (x, y)
// presents back toward (x, y).
func (e *Engine) readNeighborOutput(x, y int32, d tiles.Direction) tiles.State {
	nx, ny := neighborCoord(x, y, d)
	nt, err := e.Board.TileAt(nx, ny)
	if err != nil {
		return tiles.Disconnected
	}
	return tiles.CheckOutput(nt, tiles.Opposite(d))
}

func inputSides() [4]bool {
	return [4]bool{true, true, true, true}
}

// collectInputSources gathers every switch/button currently pending in
// CategoryInput whose output state matches want.
func (e *Engine) collectInputSources(want func(tiles.State) bool) ([]source, error) {
	var out []source
	for _, cc := range e.Board.ResidentChunks() {
		c, err := e.Board.ChunkAt(cc.X*chunk.Width, cc.Y*chunk.Width)
		if err != nil {
			return nil, err
		}
		for _, idx := range c.PendingIndices(chunk.CategoryInput) {
			td := c.TileAt(idx)
			if !td.Kind.IsInput() || !want(td.State1) {
				continue
			}
			lx, ly := chunk.Coords(idx)
			x := cc.X*chunk.Width + int32(lx)
			y := cc.Y*chunk.Width + int32(ly)
			out = append(out, source{x, y, inputSides(), td.State1})
		}
	}
	return out, nil
}

type chanKey struct {
	x, y int32
	axis bool // true = a crossover's vertical channel (State1); false = a crossover's horizontal channel (State2) or any other wire's single channel (State1)
}

type driveState struct {
	state       tiles.State
	isCrossover bool
}

type workItem struct {
	x, y    int32
	entry   tiles.Direction
	state   tiles.State
	from    chanKey
	hasFrom bool
}

// componentTracker is a union-find over wire channels, used to identify
// every channel belonging to the same electrically connected component
// regardless of which source's traversal first reached it, so a conflict
// detected anywhere in the component can be resolved across the whole
// component rather than just the single channel it was detected on.
type componentTracker struct {
	parent map[chanKey]chanKey
}

func newComponentTracker() *componentTracker {
	return &componentTracker{parent: make(map[chanKey]chanKey)}
}

func (t *componentTracker) find(k chanKey) chanKey {
	p, ok := t.parent[k]
	if !ok {
		t.parent[k] = k
		return k
	}
	if p == k {
		return k
	}
	root := t.find(p)
	t.parent[k] = root
	return root
}

func (t *componentTracker) union(a, b chanKey) {
	ra, rb := t.find(a), t.find(b)
	if ra != rb {
		t.parent[ra] = rb
	}
}

// propagate floods every source's driven state outward across the wire
// network via an explicit work-stack DFS, writing each wire channel at
// most once per tick per value. When a channel already driven by one
// non-Middle state is reached by a disagreeing non-Middle state, the
// whole connected component it belongs to (not just that channel) is
// resolved to a single value: Middle, counted as exactly one conflict,
// when extraLogicStates is enabled; otherwise High dominates Low and no
// conflict is counted, matching the off-by-default boundary behavior.
func (e *Engine) propagate(sources []source, driven map[chanKey]*driveState, comps *componentTracker, resolved map[chanKey]tiles.State) error {
	var stack []workItem
	for _, src := range sources {
		for d := tiles.North; d <= tiles.West; d++ {
			if !src.sides[d] {
				continue
			}
			nx, ny := neighborCoord(src.x, src.y, d)
			stack = append(stack, workItem{x: nx, y: ny, entry: tiles.Opposite(d), state: src.state})
		}
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c, err := e.Board.ChunkAt(item.x, item.y)
		if err != nil {
			continue
		}
		idx := board.LocalIndexOf(item.x, item.y)
		td := c.TileAt(idx)
		if !td.Kind.IsWire() || !tiles.Connects(td.Kind, td.Direction, item.entry) {
			continue
		}

		axis := item.entry.Vertical()
		isCrossover := td.Kind == tiles.WireCrossover
		key := chanKey{item.x, item.y, isCrossover && axis}

		if item.hasFrom {
			comps.union(item.from, key)
		}
		root := comps.find(key)
		state := item.state
		if forced, ok := resolved[root]; ok {
			state = forced
		}

		ds, seen := driven[key]
		if !seen {
			driven[key] = &driveState{state: state, isCrossover: isCrossover}
			writeChannel(&td, isCrossover, axis, state)
			c.SetTile(idx, td)

			for d := tiles.North; d <= tiles.West; d++ {
				if d == item.entry {
					continue
				}
				if !tiles.Connects(td.Kind, td.Direction, d) {
					continue
				}
				if isCrossover && d.Vertical() != axis {
					continue
				}
				nx, ny := neighborCoord(item.x, item.y, d)
				stack = append(stack, workItem{x: nx, y: ny, entry: tiles.Opposite(d), state: state, from: key, hasFrom: true})
			}
			continue
		}

		if ds.state == state {
			continue
		}
		if forced, ok := resolved[root]; ok {
			if ds.state != forced {
				e.applyResolved(driven, comps, root, forced)
			}
			continue
		}
		if ds.state == tiles.Middle {
			continue
		}

		target := tiles.High
		if e.Board.ExtraLogicStates {
			target = tiles.Middle
			e.ConflictCount++
			e.Logger.Printf("conflicting drivers in component touching (%d, %d): forcing Middle", item.x, item.y)
		} else {
			e.Logger.Printf("conflicting drivers in component touching (%d, %d): High dominates", item.x, item.y)
		}
		resolved[root] = target
		e.applyResolved(driven, comps, root, target)
	}
	return nil
}

// applyResolved rewrites every channel already recorded in driven that
// belongs to root's component to target, both in the driven bookkeeping
// and on the board itself.
func (e *Engine) applyResolved(driven map[chanKey]*driveState, comps *componentTracker, root chanKey, target tiles.State) {
	for k, ds := range driven {
		if comps.find(k) != root || ds.state == target {
			continue
		}
		ds.state = target
		c, err := e.Board.ChunkAt(k.x, k.y)
		if err != nil {
			continue
		}
		idx := board.LocalIndexOf(k.x, k.y)
		td := c.TileAt(idx)
		writeChannel(&td, ds.isCrossover, k.axis, target)
		c.SetTile(idx, td)
	}
}

func writeChannel(td *tiles.TileData, isCrossover, vertical bool, state tiles.State) {
	if isCrossover && !vertical {
		td.State2 = state
		return
	}
	td.State1 = state
}

// propagateLEDs runs phase 4: every LED reachable from a pending LED
// through 4-neighborhood LED-to-LED adjacency forms one cluster, and the
// whole cluster adopts the maximum state (High over Middle over Low) any
// member sees on its boundary.
func (e *Engine) propagateLEDs() error {
	visited := make(map[tileRef]bool)
	for _, cc := range e.Board.ResidentChunks() {
		c, err := e.Board.ChunkAt(cc.X*chunk.Width, cc.Y*chunk.Width)
		if err != nil {
			return err
		}
		for _, idx := range c.PendingIndices(chunk.CategoryLED) {
			td := c.TileAt(idx)
			if td.Kind != tiles.OutLed {
				c.ClearPending(chunk.CategoryLED, idx)
				continue
			}
			lx, ly := chunk.Coords(idx)
			ref := tileRef{cc.X*chunk.Width + int32(lx), cc.Y*chunk.Width + int32(ly)}
			if visited[ref] {
				continue
			}
			if err := e.propagateLEDCluster(ref, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// propagateLEDCluster walks every LED reachable from start via
// 4-neighborhood LED-to-LED adjacency, marking each visited in visited,
// and lights every member of the cluster to the maximum state found on
// the cluster's combined boundary.
func (e *Engine) propagateLEDCluster(start tileRef, visited map[tileRef]bool) error {
	members := []tileRef{start}
	visited[start] = true
	stack := []tileRef{start}

	best := tiles.Low
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for d := tiles.North; d <= tiles.West; d++ {
			switch s := e.readNeighborOutput(ref.X, ref.Y, d); {
			case s == tiles.High:
				best = tiles.High
			case s == tiles.Middle && best != tiles.High:
				best = tiles.Middle
			}

			nx, ny := neighborCoord(ref.X, ref.Y, d)
			nt, err := e.Board.TileAt(nx, ny)
			if err != nil || nt.Kind != tiles.OutLed {
				continue
			}
			nref := tileRef{nx, ny}
			if visited[nref] {
				continue
			}
			visited[nref] = true
			members = append(members, nref)
			stack = append(stack, nref)
		}
	}

	for _, ref := range members {
		c, err := e.Board.ChunkAt(ref.X, ref.Y)
		if err != nil {
			continue
		}
		idx := board.LocalIndexOf(ref.X, ref.Y)
		td := c.TileAt(idx)
		if td.State1 != best {
			td.State1 = best
			c.SetTile(idx, td)
		}
	}
	return nil
}

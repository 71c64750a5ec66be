// Command logicsim loads a board, optionally runs it headless for a
// fixed number of ticks or opens the ebiten viewer, and can report on a
// region store's contents via -inspect.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/circuitworks/logicsim/board"
	"github.com/circuitworks/logicsim/config"
	"github.com/circuitworks/logicsim/engine"
	"github.com/circuitworks/logicsim/region"
	"github.com/circuitworks/logicsim/view"
)

var (
	configPath = flag.String("config", "logicsim.yaml", "Path to a logicsim.yaml config file.")
	regionDir  = flag.String("region_dir", "", "Region file directory; overrides the config file's regionDir.")
	ticks      = flag.Uint64("ticks", 0, "Run headless for this many ticks instead of opening the viewer (0 opens the viewer).")
	inspect    = flag.Bool("inspect", false, "Print a table of the chunk coordinates stored in the region files, then exit; free sectors are not listed.")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if loaded, err := config.Load(*configPath); err == nil {
		cfg = loaded
	}
	if *regionDir != "" {
		cfg.RegionDir = *regionDir
	}

	store, err := region.NewStore(cfg.RegionDir)
	if err != nil {
		log.Fatalf("opening region store: %v", err)
	}

	if *inspect {
		if err := runInspect(store); err != nil {
			log.Fatalf("inspect: %v", err)
		}
		return
	}

	b := board.New()
	b.MaxSize = cfg.BoardMaxSize
	b.ExtraLogicStates = cfg.ExtraLogicStates
	b.SetSource(store)

	if *ticks > 0 {
		runHeadless(b, *ticks)
		return
	}

	g := view.NewGame(b, 800, 600)
	ebiten.SetWindowSize(800, 600)
	ebiten.SetWindowTitle("logicsim")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

func runHeadless(b *board.Board, n uint64) {
	e := engine.New(b)
	for i := uint64(0); i < n; i++ {
		if err := e.Tick(); err != nil {
			log.Fatalf("tick %d: %v", i, err)
		}
	}
	fmt.Printf("ran %d ticks, %d conflicts\n", n, e.ConflictCount)
}

func runInspect(store *region.Store) error {
	coords, err := store.KnownChunks()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Known Chunks")
	t.AppendHeader(table.Row{"Chunk X", "Chunk Y"})
	for _, cc := range coords {
		t.AppendRow(table.Row{cc.X, cc.Y})
	}
	t.Render()
	fmt.Printf("\n%d chunks known\n", len(coords))
	return nil
}

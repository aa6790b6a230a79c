package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"hackvm/pkg/asm"
	"hackvm/pkg/codegen"
	"hackvm/pkg/cpu"
	"hackvm/pkg/translator"
)

type Game struct {
	vm        *cpu.CPU
	screenImg *ebiten.Image // reused 512×256 canvas
	keys      keyboard
	speed     int
	log       *slog.Logger
}

func (g *Game) Update() error {
	pressed := inpututil.AppendPressedKeys(nil)
	g.vm.SetKey(g.keys.update(ebiten.AppendInputChars(nil), pressed))

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		name := fmt.Sprintf("hack_%s.png", time.Now().Format("20060102_150405"))
		if err := g.vm.SaveScreenshot(name, 2); err != nil {
			g.log.Error("screenshot failed", "err", err)
		} else {
			g.log.Info("saved screenshot", "file", name)
		}
	}

	for i := 0; i < g.speed; i++ {
		if g.vm.Halted {
			break
		}
		if err := g.vm.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}
	g.screenImg.WritePixels(g.vm.ScreenRGBA())
	screen.DrawImage(g.screenImg, nil)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight
}

// load translates the program behind path and assembles it.
func load(path, bootstrap string, log *slog.Logger) ([]uint16, error) {
	mode, err := translator.ParseBootstrapMode(bootstrap)
	if err != nil {
		return nil, err
	}
	plan, err := translator.Discover(path)
	if err != nil {
		return nil, err
	}
	mode.Apply(&plan)

	units, err := translator.Load(context.Background(), plan)
	if err != nil {
		return nil, err
	}
	sink := &codegen.BufferSink{}
	opts := translator.Options{Logger: log}
	opts.Bootstrap = plan.Bootstrap
	if _, err := translator.Translate(units, sink, opts); err != nil {
		return nil, err
	}
	program, _, err := asm.Assemble(sink.String())
	return program, err
}

func main() {
	speed := flag.Int("speed", 50000, "instructions executed per frame")
	bootstrap := flag.String("bootstrap", "auto", "auto, on or off")
	scale := flag.Int("scale", 2, "window scale")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: desktop [-speed n] [-bootstrap auto|on|off] <file.vm|dir>")
		os.Exit(2)
	}

	program, err := load(flag.Arg(0), *bootstrap, log)
	if err != nil {
		log.Error("cannot load program", "err", err)
		os.Exit(1)
	}

	vm := cpu.NewCPU()
	if err := vm.Load(program); err != nil {
		log.Error("cannot load program", "err", err)
		os.Exit(1)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.ScreenWidth*(*scale), cpu.ScreenHeight*(*scale))
	ebiten.SetWindowTitle("Hack VM Desktop")

	game := &Game{vm: vm, speed: *speed, log: log}
	if err := ebiten.RunGame(game); err != nil {
		log.Error("emulator stopped", "err", err)
		os.Exit(1)
	}
}

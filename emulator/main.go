package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/term"

	"github.com/xiaobogaga/hack/internal/hack"
	"github.com/xiaobogaga/hack/util"
)

// A window running a hack binary program: the screen memory map is drawn every frame and the
// pressed key is written to the keyboard register.

var (
	inputPath = flag.String("i", "./input.hack", "the hack binary code file to run")
	steps     = flag.Int("steps", 20000, "the instructions executed per frame")
	scale     = flag.Float64("scale", 2, "the window scale of the 512x256 screen")
	headless  = flag.Bool("headless", false, "run without a window until the program halts or -max instructions ran")
	maxSteps  = flag.Int("max", 10000000, "the instruction limit of a headless run")
	shot      = flag.String("shot", "", "a bmp file to save the screen to when the run ends")
)

var specialKeys = []struct {
	key  ebiten.Key
	code int16
}{
	{ebiten.KeyEnter, 128},
	{ebiten.KeyBackspace, 129},
	{ebiten.KeyArrowLeft, 130},
	{ebiten.KeyArrowUp, 131},
	{ebiten.KeyArrowRight, 132},
	{ebiten.KeyArrowDown, 133},
	{ebiten.KeyHome, 134},
	{ebiten.KeyEnd, 135},
	{ebiten.KeyPageUp, 136},
	{ebiten.KeyPageDown, 137},
	{ebiten.KeyInsert, 138},
	{ebiten.KeyDelete, 139},
	{ebiten.KeyEscape, 140},
	{ebiten.KeyF1, 141},
	{ebiten.KeyF2, 142},
	{ebiten.KeyF3, 143},
	{ebiten.KeyF4, 144},
	{ebiten.KeyF5, 145},
	{ebiten.KeyF6, 146},
	{ebiten.KeyF7, 147},
	{ebiten.KeyF8, 148},
	{ebiten.KeyF9, 149},
	{ebiten.KeyF10, 150},
	{ebiten.KeyF11, 151},
	{ebiten.KeyF12, 152},
}

type Game struct {
	cpu      *hack.CPU
	screen   *ebiten.Image
	pixels   []byte
	lastChar int16
	halted   bool
}

// keyCode returns the hack code of the key held down, 0 when there is none.
func (g *Game) keyCode() int16 {
	for _, special := range specialKeys {
		if ebiten.IsKeyPressed(special.key) {
			return special.code
		}
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		if r < 128 {
			g.lastChar = int16(r)
		}
	}
	if len(inpututil.AppendPressedKeys(nil)) == 0 {
		g.lastChar = 0
	}
	return g.lastChar
}

func (g *Game) Update() error {
	g.cpu.SetKey(g.keyCode())
	g.cpu.Run(*steps)
	if g.cpu.Halted && !g.halted {
		g.halted = true
		log.Printf("program halted after %d instructions", g.cpu.Steps)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screen == nil {
		g.screen = ebiten.NewImage(hack.ScreenWidth, hack.ScreenHeight)
		g.pixels = make([]byte, hack.ScreenWidth*hack.ScreenHeight*4)
	}
	g.cpu.Framebuffer(g.pixels)
	g.screen.WritePixels(g.pixels)
	screen.DrawImage(g.screen, nil)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return hack.ScreenWidth, hack.ScreenHeight
}

func loadProgram(file string) ([]uint16, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	rom, err := hack.ParseProgram(strings.Split(string(src), "\n"))
	if err != nil {
		return nil, util.WithFile(err, file)
	}
	return rom, nil
}

func saveScreenshot(cpu *hack.CPU, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := cpu.WriteScreenshot(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	flag.Parse()
	log.SetPrefix("[Emulator]: ")
	log.SetFlags(0)
	rom, err := loadProgram(*inputPath)
	if err != nil {
		log.Printf("failed to load program: %s, err: %v", *inputPath, err)
		os.Exit(1)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		log.Printf("running %s, %d instructions", *inputPath, len(rom))
	}
	cpu := hack.NewCPU(rom)
	if *headless {
		n := cpu.Run(*maxSteps)
		log.Printf("executed %d instructions, halted: %v", n, cpu.Halted)
	} else {
		ebiten.SetWindowSize(int(float64(hack.ScreenWidth)*(*scale)), int(float64(hack.ScreenHeight)*(*scale)))
		ebiten.SetWindowTitle("Hack - " + util.BaseName(*inputPath))
		if err := ebiten.RunGame(&Game{cpu: cpu}); err != nil {
			log.Fatal(err)
		}
	}
	if *shot != "" {
		if err := saveScreenshot(cpu, *shot); err != nil {
			log.Printf("failed to save screenshot: %s, err: %v", *shot, err)
			os.Exit(1)
		}
	}
}

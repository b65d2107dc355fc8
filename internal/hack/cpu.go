// Package hack simulates the hack computer: a 16 bit CPU with a 32K instruction ROM, a 32K
// data RAM, a 512x256 monochrome screen mapped at 16384 and a keyboard register at 24576.
package hack

import (
	"image"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/xiaobogaga/hack/util"
)

const (
	RAMSize      = 1 << 15
	ScreenBase   = 16384
	KeyboardAddr = 24576
	ScreenWidth  = 512
	ScreenHeight = 256
	screenWords  = ScreenWidth * ScreenHeight / 16
	addrMask     = RAMSize - 1
)

type CPU struct {
	RAM    [RAMSize]int16
	ROM    []uint16
	A      int16
	D      int16
	PC     int
	Halted bool
	Steps  int
}

func NewCPU(rom []uint16) *CPU {
	return &CPU{ROM: rom}
}

// ParseProgram reads the text produced by the assembler, one 16 character word per line.
func ParseProgram(lines []string) ([]uint16, error) {
	rom := make([]uint16, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		word, err := strconv.ParseUint(line, 2, 16)
		if err != nil || len(line) != 16 {
			return nil, util.NewError(util.EncodingError, "Hack", util.ErrInvalidInstruction, i+1, line,
				"expected 16 binary digits")
		}
		rom = append(rom, uint16(word))
	}
	return rom, nil
}

// Reset clears the registers and the RAM, keeping the program.
func (cpu *CPU) Reset() {
	rom := cpu.ROM
	*cpu = CPU{ROM: rom}
}

// Step executes one instruction. Running past the end of the ROM or into a two instruction
// "@self; 0;JMP" loop halts the CPU.
func (cpu *CPU) Step() {
	if cpu.Halted {
		return
	}
	if cpu.PC < 0 || cpu.PC >= len(cpu.ROM) {
		cpu.Halted = true
		return
	}
	ins := cpu.ROM[cpu.PC]
	cpu.Steps++
	if ins&0x8000 == 0 {
		cpu.A = int16(ins)
		cpu.PC++
		return
	}
	addr := uint16(cpu.A) & addrMask
	y := cpu.A
	if ins&0x1000 != 0 {
		y = cpu.RAM[addr]
	}
	out := alu(cpu.D, y, ins>>6&0x3F)
	if ins&0x08 != 0 {
		cpu.RAM[addr] = out
	}
	if ins&0x10 != 0 {
		cpu.D = out
	}
	if ins&0x20 != 0 {
		cpu.A = out
	}
	if jumps(ins&0x07, out) {
		if ins&0x07 == 0x07 && int(addr) == cpu.PC-1 && cpu.ROM[cpu.PC-1] == addr {
			cpu.Halted = true
		}
		cpu.PC = int(addr)
		return
	}
	cpu.PC++
}

// alu computes the hack ALU function selected by the six control bits zx nx zy ny f no.
func alu(x, y int16, control uint16) int16 {
	if control&0x20 != 0 {
		x = 0
	}
	if control&0x10 != 0 {
		x = ^x
	}
	if control&0x08 != 0 {
		y = 0
	}
	if control&0x04 != 0 {
		y = ^y
	}
	var out int16
	if control&0x02 != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if control&0x01 != 0 {
		out = ^out
	}
	return out
}

func jumps(jump uint16, out int16) bool {
	return (jump&0x04 != 0 && out < 0) || (jump&0x02 != 0 && out == 0) || (jump&0x01 != 0 && out > 0)
}

// Run executes at most maxSteps instructions and returns how many were executed.
func (cpu *CPU) Run(maxSteps int) int {
	start := cpu.Steps
	for i := 0; i < maxSteps && !cpu.Halted; i++ {
		cpu.Step()
	}
	return cpu.Steps - start
}

// RunUntil executes until the PC reaches pc. It returns false when the CPU halted or
// maxSteps ran out first.
func (cpu *CPU) RunUntil(pc, maxSteps int) bool {
	for i := 0; i < maxSteps; i++ {
		if cpu.PC == pc {
			return true
		}
		if cpu.Halted {
			return false
		}
		cpu.Step()
	}
	return cpu.PC == pc
}

// SetKey sets the keyboard register, 0 meaning no key is pressed.
func (cpu *CPU) SetKey(code int16) {
	cpu.RAM[KeyboardAddr] = code
}

// Framebuffer renders the screen memory map as RGBA pixels into dst, which must hold
// ScreenWidth*ScreenHeight*4 bytes. The least significant bit of a word is its leftmost pixel.
func (cpu *CPU) Framebuffer(dst []byte) {
	for w := 0; w < screenWords; w++ {
		word := uint16(cpu.RAM[ScreenBase+w])
		for bit := 0; bit < 16; bit++ {
			offset := (w*16 + bit) * 4
			var c byte = 0xFF
			if word&(1<<bit) != 0 {
				c = 0x00
			}
			dst[offset], dst[offset+1], dst[offset+2], dst[offset+3] = c, c, c, 0xFF
		}
	}
}

// Image returns a copy of the screen.
func (cpu *CPU) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	cpu.Framebuffer(img.Pix)
	return img
}

// WriteScreenshot encodes the screen as a BMP image.
func (cpu *CPU) WriteScreenshot(w io.Writer) error {
	return bmp.Encode(w, cpu.Image())
}

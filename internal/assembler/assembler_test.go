package assembler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaobogaga/hack/util"
)

func TestFormatWord(t *testing.T) {
	testData := []struct {
		word uint16
		code string
	}{
		{0, "0000000000000000"},
		{1, "0000000000000001"},
		{2, "0000000000000010"},
		{32767, "0111111111111111"},
		{0xFFFF, "1111111111111111"},
	}
	for _, data := range testData {
		assert.Equal(t, data.code, FormatWord(data.word))
	}
}

func TestParseCInstruction(t *testing.T) {
	type code struct {
		assembleCode string
		binaryCode   string
	}
	dest := []code{
		{assembleCode: "", binaryCode: "000"},
		{assembleCode: "M", binaryCode: "001"},
		{assembleCode: "D", binaryCode: "010"},
		{assembleCode: "MD", binaryCode: "011"},
		{assembleCode: "A", binaryCode: "100"},
		{assembleCode: "AM", binaryCode: "101"},
		{assembleCode: "AD", binaryCode: "110"},
		{assembleCode: "AMD", binaryCode: "111"},
	}
	comp := []code{
		{assembleCode: "0", binaryCode: "0101010"},
		{assembleCode: "1", binaryCode: "0111111"},
		{assembleCode: "-1", binaryCode: "0111010"},
		{assembleCode: "D", binaryCode: "0001100"},
		{assembleCode: "A", binaryCode: "0110000"},
		{assembleCode: "!D", binaryCode: "0001101"},
		{assembleCode: "!A", binaryCode: "0110001"},
		{assembleCode: "-D", binaryCode: "0001111"},
		{assembleCode: "-A", binaryCode: "0110011"},
		{assembleCode: "D+1", binaryCode: "0011111"},
		{assembleCode: "A+1", binaryCode: "0110111"},
		{assembleCode: "D-1", binaryCode: "0001110"},
		{assembleCode: "A-1", binaryCode: "0110010"},
		{assembleCode: "D+A", binaryCode: "0000010"},
		{assembleCode: "D-A", binaryCode: "0010011"},
		{assembleCode: "A-D", binaryCode: "0000111"},
		{assembleCode: "D&A", binaryCode: "0000000"},
		{assembleCode: "D|A", binaryCode: "0010101"},
		{assembleCode: "M", binaryCode: "1110000"},
		{assembleCode: "!M", binaryCode: "1110001"},
		{assembleCode: "-M", binaryCode: "1110011"},
		{assembleCode: "M+1", binaryCode: "1110111"},
		{assembleCode: "M-1", binaryCode: "1110010"},
		{assembleCode: "D+M", binaryCode: "1000010"},
		{assembleCode: "D-M", binaryCode: "1010011"},
		{assembleCode: "M-D", binaryCode: "1000111"},
		{assembleCode: "D&M", binaryCode: "1000000"},
		{assembleCode: "D|M", binaryCode: "1010101"},
	}
	jump := []code{
		{assembleCode: "", binaryCode: "000"},
		{assembleCode: "JGT", binaryCode: "001"},
		{assembleCode: "JEQ", binaryCode: "010"},
		{assembleCode: "JGE", binaryCode: "011"},
		{assembleCode: "JLT", binaryCode: "100"},
		{assembleCode: "JNE", binaryCode: "101"},
		{assembleCode: "JLE", binaryCode: "110"},
		{assembleCode: "JMP", binaryCode: "111"},
	}
	for _, destCode := range dest {
		line := destCode.assembleCode
		if line != "" {
			line += "="
		}
		for _, compCode := range comp {
			for _, jumpCode := range jump {
				text := line + compCode.assembleCode
				if jumpCode.assembleCode != "" {
					text += ";" + jumpCode.assembleCode
				}
				ins, err := ParseInstruction(text, 1)
				require.Nil(t, err, text)
				assert.Equal(t, CInstruction, ins.Type, text)
				assert.Equal(t, compCode.binaryCode[0] == '1', ins.Comp.ReadsMemory(), text)
				word, err := ins.Word()
				require.Nil(t, err, text)
				assert.Equal(t, "111"+compCode.binaryCode+destCode.binaryCode+jumpCode.binaryCode,
					FormatWord(word), text)
			}
		}
	}
}

func TestParseCInstruction_Aliases(t *testing.T) {
	pairs := [][2]string{
		{"D=A+D", "D=D+A"},
		{"M=1+M", "M=M+1"},
		{"DM=M|D", "MD=D|M"},
		{"MA=A&D", "AM=D&A"},
		{"DAM=0", "AMD=0"},
	}
	for _, pair := range pairs {
		alias, err := ParseInstruction(pair[0], 1)
		require.Nil(t, err, pair[0])
		canonical, err := ParseInstruction(pair[1], 1)
		require.Nil(t, err, pair[1])
		aliasWord, _ := alias.Word()
		canonicalWord, _ := canonical.Word()
		assert.Equal(t, canonicalWord, aliasWord, pair[0])
	}
}

func TestParseAInstruction(t *testing.T) {
	ins, err := ParseInstruction("@10", 1)
	require.Nil(t, err)
	assert.Equal(t, AInstruction, ins.Type)
	word, err := ins.Word()
	require.Nil(t, err)
	assert.Equal(t, "0000000000001010", FormatWord(word))

	ins, err = ParseInstruction("@Main.main$ret.0", 2)
	require.Nil(t, err)
	assert.Equal(t, "Main.main$ret.0", ins.Symbol)
	_, err = ins.Word()
	assert.NotNil(t, err)
}

func TestParseInstruction_Errors(t *testing.T) {
	testData := []struct {
		Line string
		Err  error
		Kind util.ErrorKind
	}{
		{Line: "@32768", Err: util.ErrOutOfRange, Kind: util.EncodingError},
		{Line: "@12ab", Err: util.ErrInvalidInstruction, Kind: util.SyntaxError},
		{Line: "@a-b", Err: util.ErrInvalidInstruction, Kind: util.SyntaxError},
		{Line: "@", Err: util.ErrInvalidInstruction, Kind: util.SyntaxError},
		{Line: "X=D", Err: util.ErrInvalidInstruction, Kind: util.EncodingError},
		{Line: "D=Q", Err: util.ErrInvalidInstruction, Kind: util.EncodingError},
		{Line: "D;JMPX", Err: util.ErrInvalidInstruction, Kind: util.EncodingError},
		{Line: "AA=D", Err: util.ErrInvalidInstruction, Kind: util.EncodingError},
		{Line: "D=A+A", Err: util.ErrInvalidInstruction, Kind: util.EncodingError},
	}
	for _, data := range testData {
		_, err := ParseInstruction(data.Line, 3)
		assert.True(t, errors.Is(err, data.Err), data.Line)
		kind, _ := util.KindOf(err)
		assert.Equal(t, data.Kind, kind, data.Line)
	}
}

func TestParseLabel(t *testing.T) {
	label, err := parseLabel("(hel4lo._)", 1)
	assert.Nil(t, err)
	assert.Equal(t, "hel4lo._", label)
	_, err = parseLabel("(5shsl)", 1)
	assert.True(t, errors.Is(err, util.ErrInvalidInstruction))
	_, err = parseLabel("(LOOP", 1)
	assert.True(t, errors.Is(err, util.ErrInvalidInstruction))
	_, err = parseLabel("()", 1)
	assert.True(t, errors.Is(err, util.ErrInvalidInstruction))
}

func TestAssemble_AddProgram(t *testing.T) {
	src := "@2\nD=A\n@3\nD=D+A\n@0\nM=D\n"
	codes, err := Assemble(NewSymbolTable(), []byte(src))
	require.Nil(t, err)
	want := []string{
		"0000000000000010",
		"1110110000010000",
		"0000000000000011",
		"1110000010010000",
		"0000000000000000",
		"1110001100001000",
	}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("machine code mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembler_IntegrationTest(t *testing.T) {
	contents := `
// set M[11] = 10 + M[11]
@10
D=A
@11
M=M+D
@2
D=A // welcome
@i
M=D
@10
D=A
@j
M=D


// Loop M[11] = M[11] - 2 until M[11] < 0
(LOOP)
@i
D=A
@11
M=M-D // hello
@11
D=M
@END
D;JLT
@LOOP
0;JMP

(END)
@END
0;JMP
`
	table := NewSymbolTable()
	codes, err := Assemble(table, []byte(contents))
	require.Nil(t, err)
	require.Equal(t, 24, len(codes))
	assert.Equal(t, "1111000010001000", codes[3])
	assert.Equal(t, "0000000000010000", codes[6])
	assert.Equal(t, "0000000000010001", codes[10])
	assert.Equal(t, "0000000000010000", codes[12])
	assert.Equal(t, "1111000111001000", codes[15])
	assert.Equal(t, "1111110000010000", codes[17])
	assert.Equal(t, "0000000000010110", codes[18])
	assert.Equal(t, "1110001100000100", codes[19])
	assert.Equal(t, "0000000000001100", codes[20])
	assert.Equal(t, "1110101010000111", codes[21])
	assert.Equal(t, "0000000000010110", codes[22])

	assert.Equal(t, []SymbolEntry{
		{Name: "LOOP", Address: 12},
		{Name: "i", Address: 16},
		{Name: "j", Address: 17},
		{Name: "END", Address: 22},
	}, table.Entries())
}

func TestAssemble_PredefinedSymbols(t *testing.T) {
	codes, err := Assemble(NewSymbolTable(), []byte("@SP\n@LCL\n@ARG\n@THIS\n@THAT\n@R15\n@SCREEN\n@KBD\n"))
	require.Nil(t, err)
	assert.Equal(t, []string{
		FormatWord(0), FormatWord(1), FormatWord(2), FormatWord(3), FormatWord(4), FormatWord(15),
		FormatWord(16384), FormatWord(24576),
	}, codes)
}

func TestAssemble_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Err     error
	}{
		{Content: "(LOOP)\n@LOOP\n(LOOP)\n0;JMP", Err: util.ErrDuplicateLabel},
		{Content: "(SP)\n0;JMP", Err: util.ErrDuplicateLabel},
		{Content: "@1\nD=X\n", Err: util.ErrInvalidInstruction},
		{Content: "(bad label)\n", Err: util.ErrInvalidInstruction},
	}
	for _, data := range testData {
		codes, err := Assemble(NewSymbolTable(), []byte(data.Content))
		assert.Nil(t, codes)
		assert.True(t, errors.Is(err, data.Err), data.Content)
	}
}

func TestAssembler_SharedTable(t *testing.T) {
	sources := []Source{
		{Name: "First.asm", Content: []byte("@x\nM=1\n")},
		{Name: "Second.asm", Content: []byte("@y\n@x\n")},
	}
	shared, err := CreateAssembler(false).AssembleFiles(sources)
	require.Nil(t, err)
	assert.Equal(t, [][]string{
		{FormatWord(16), "1110111111001000"},
		{FormatWord(17), FormatWord(16)},
	}, shared)

	separate, err := CreateAssembler(true).AssembleFiles(sources)
	require.Nil(t, err)
	assert.Equal(t, [][]string{
		{FormatWord(16), "1110111111001000"},
		{FormatWord(16), FormatWord(17)},
	}, separate)
}

func TestAssembler_SharedTableRejectsRebinding(t *testing.T) {
	sources := []Source{
		{Name: "First.asm", Content: []byte("(LOOP)\n@LOOP\n0;JMP\n")},
		{Name: "Second.asm", Content: []byte("(LOOP)\n@LOOP\n0;JMP\n")},
	}
	_, err := CreateAssembler(false).AssembleFiles(sources)
	assert.True(t, errors.Is(err, util.ErrDuplicateLabel))
	var asmErr *util.Error
	require.True(t, errors.As(err, &asmErr))
	assert.Equal(t, "Second.asm", asmErr.File)

	outputs, err := CreateAssembler(true).AssembleFiles(sources)
	require.Nil(t, err)
	assert.Equal(t, outputs[0], outputs[1])
}

func TestAssemble_Deterministic(t *testing.T) {
	src := []byte("@a\n@b\n(L)\n@L\n@a\nD;JGT\n")
	first, err := Assemble(NewSymbolTable(), src)
	require.Nil(t, err)
	second, err := Assemble(NewSymbolTable(), src)
	require.Nil(t, err)
	assert.Equal(t, first, second)
}

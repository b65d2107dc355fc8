package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHackSymbol(t *testing.T) {
	testData := []struct {
		Symbol string
		Legal  bool
	}{
		{Symbol: "LOOP", Legal: true},
		{Symbol: "Main.main$ret.0", Legal: true},
		{Symbol: "_a:b", Legal: true},
		{Symbol: "1abc", Legal: false},
		{Symbol: "a b", Legal: false},
		{Symbol: "", Legal: false},
		{Symbol: "a-b", Legal: false},
	}
	for _, data := range testData {
		assert.Equal(t, data.Legal, IsHackSymbol(data.Symbol), data.Symbol)
	}
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("0"))
	assert.True(t, IsNumeric("32767"))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("-1"))
	assert.False(t, IsNumeric("12a"))
}

func TestCheckSourceFile(t *testing.T) {
	assert.Nil(t, CheckSourceFile("dir/Main.jack", JackExt))
	assert.Nil(t, CheckSourceFile("Sys.vm", VMExt))

	err := CheckSourceFile("dir/main.jack", JackExt)
	assert.True(t, errors.Is(err, ErrBadFileName))
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, NamingError, kind)

	err = CheckSourceFile("Main.txt", AsmExt)
	assert.True(t, errors.Is(err, ErrBadFileName))
}

func TestCollectFilesAndReadSource(t *testing.T) {
	dir := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(dir, "Sys.vm"), []byte("function Sys.init 0\n"), 0666))
	require.Nil(t, os.WriteFile(filepath.Join(dir, "Main.vm"), []byte("  \n\t\n"), 0666))
	require.Nil(t, os.WriteFile(filepath.Join(dir, "Notes.txt"), []byte("ignored"), 0666))

	files, err := CollectFiles(dir, VMExt)
	require.Nil(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "Main.vm"), filepath.Join(dir, "Sys.vm")}, files)

	_, err = ReadSource(files[0], VMExt)
	assert.True(t, errors.Is(err, ErrEmptyInput))

	content, err := ReadSource(files[1], VMExt)
	assert.Nil(t, err)
	assert.Equal(t, "function Sys.init 0\n", string(content))

	_, err = CollectFiles(dir, AsmExt)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestErrorFormat(t *testing.T) {
	err := NewError(SyntaxError, "Tokenizer", ErrUnexpectedToken, 3, "}", "expected %s", "';'")
	assert.Equal(t, `Tokenizer: SyntaxError near "}" at line 3, msg: unexpected token: expected ';'`, err.Error())
	WithFile(err, "Main.jack")
	assert.Equal(t, "Main.jack", err.File)
	assert.True(t, strings.Contains(err.Error(), "in Main.jack at line 3"))
}

func TestDiff(t *testing.T) {
	assert.Equal(t, "", Diff("a", "x\ny\n", "b", "x\ny\n"))
	diff := Diff("want", "x\ny\n", "got", "x\nz\n")
	assert.Contains(t, diff, "--- want")
	assert.Contains(t, diff, "+++ got")
	assert.Contains(t, diff, "-y")
	assert.Contains(t, diff, "+z")
}

func TestBuildAll(t *testing.T) {
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "A.jack"), filepath.Join(dir, "B.jack")}
	build := func(failing string) func(string) (Output, error) {
		return func(file string) (Output, error) {
			if file == failing {
				return Output{}, NewError(SemanticError, "Compiler", ErrUndefinedIdentifier, 3, "x", "variable x is not declared")
			}
			return Output{Path: ReplaceExt(file, VMExt), Lines: []string{"push constant 1", "return"}}, nil
		}
	}

	_, err := BuildAll(files, build(files[1]))
	assert.True(t, errors.Is(err, ErrUndefinedIdentifier))
	for _, file := range files {
		_, statErr := os.Stat(ReplaceExt(file, VMExt))
		assert.True(t, os.IsNotExist(statErr), file)
	}

	outputs, err := BuildAll(files, build(""))
	require.Nil(t, err)
	assert.Equal(t, 2, len(outputs))
	content, err := os.ReadFile(filepath.Join(dir, "B.vm"))
	require.Nil(t, err)
	assert.Equal(t, "push constant 1\nreturn\n", string(content))
}

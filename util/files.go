package util

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	JackExt = ".jack"
	VMExt   = ".vm"
	AsmExt  = ".asm"
	HackExt = ".hack"
)

func namingErr(sentinel error, file, format string, args ...interface{}) error {
	err := NewError(NamingError, "Files", sentinel, 0, "", format, args...)
	err.File = file
	return err
}

// CheckSourceFile enforces the naming contract shared by every stage: the file carries the
// stage's extension and its base name starts with an uppercase letter.
func CheckSourceFile(path, ext string) error {
	name := filepath.Base(path)
	if filepath.Ext(name) != ext {
		return namingErr(ErrBadFileName, path, "expected a %s file", ext)
	}
	if !IsUpperLetter(name[0]) {
		return namingErr(ErrBadFileName, path, "file name must start with an uppercase letter")
	}
	return nil
}

// BaseName strips the directory and extension, "dir/Main.jack" -> "Main".
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ReplaceExt swaps the extension of path, keeping its directory.
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// CollectFiles returns path itself when it is a file, or every file in the directory with the
// given extension sorted by name. Sub directories are ignored.
func CollectFiles(path, ext string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, namingErr(ErrEmptyInput, path, "no %s files found", ext)
	}
	return files, nil
}

// ReadSource checks the naming contract, then reads the file and rejects it when it holds
// nothing but whitespace.
func ReadSource(path, ext string) ([]byte, error) {
	if err := CheckSourceFile(path, ext); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, namingErr(ErrEmptyInput, path, "file is empty")
	}
	return content, nil
}

// WriteLines writes every line followed by a newline.
func WriteLines(path string, lines []string) error {
	var bf bytes.Buffer
	for _, line := range lines {
		bf.WriteString(line)
		bf.WriteByte('\n')
	}
	return os.WriteFile(path, bf.Bytes(), 0666)
}

// Output is a generated file waiting to be written.
type Output struct {
	Path  string
	Lines []string
}

// BuildAll runs build on every file in order and writes the outputs once all of them
// succeeded. The first failure stops the run and nothing is written.
func BuildAll(files []string, build func(file string) (Output, error)) ([]Output, error) {
	outputs := make([]Output, 0, len(files))
	for _, file := range files {
		output, err := build(file)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
	}
	for _, output := range outputs {
		if err := WriteLines(output.Path, output.Lines); err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

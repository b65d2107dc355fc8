// Package vmtranslator translates vm programs to hack assembler code.
package vmtranslator

import (
	"bufio"
	"bytes"

	"github.com/xiaobogaga/hack/internal/ir"
	"github.com/xiaobogaga/hack/util"
)

// Source is one vm file of a program. Its namespace is the file's base name.
type Source struct {
	Name    string
	Content []byte
}

// Translator folds the files of one program, in order, into a single assembler listing.
type Translator struct {
	generator *CodeGenerator
	output    []string
}

func NewTranslator() *Translator {
	return &Translator{generator: NewCodeGenerator()}
}

// SetAnnotate controls whether every expansion starts with its vm command as a comment.
func (translator *Translator) SetAnnotate(annotate bool) {
	translator.generator.Annotate = annotate
}

// WriteBootstrap emits the program prologue calling entry. It must come before any file.
func (translator *Translator) WriteBootstrap(entry string) {
	translator.output = append(translator.output, translator.generator.Bootstrap(entry)...)
}

// TranslateFile translates the vm code of one file, using namespace for its statics.
func (translator *Translator) TranslateFile(namespace string, src []byte) error {
	translator.generator.SetNamespace(namespace)
	scanner := bufio.NewScanner(bytes.NewReader(src))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		lines, err := translator.TranslateLine(scanner.Text(), lineNo)
		if err != nil {
			return err
		}
		translator.output = append(translator.output, lines...)
	}
	return scanner.Err()
}

// TranslateLine translates a single vm line in the current namespace. Blank lines and comments
// produce nothing.
func (translator *Translator) TranslateLine(line string, lineNo int) ([]string, error) {
	cmd, ok, err := ir.Parse(line, lineNo)
	if err != nil || !ok {
		return nil, err
	}
	return translator.generator.Generate(cmd)
}

// Namespace is the namespace of the file being translated.
func (translator *Translator) Namespace() string {
	return translator.generator.namespace
}

func (translator *Translator) SetNamespace(namespace string) {
	translator.generator.SetNamespace(namespace)
}

func (translator *Translator) Lines() []string {
	return translator.output
}

// TranslateProgram translates every source in order. When bootstrap is set the program starts
// with SP=256 and a call to entry.
func TranslateProgram(sources []Source, bootstrap bool, entry string) ([]string, error) {
	translator := NewTranslator()
	if bootstrap {
		translator.WriteBootstrap(entry)
	}
	for _, source := range sources {
		if err := translator.TranslateFile(util.BaseName(source.Name), source.Content); err != nil {
			return nil, util.WithFile(err, source.Name)
		}
	}
	return translator.Lines(), nil
}

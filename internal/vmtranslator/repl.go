package vmtranslator

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// REPL reads vm commands from the terminal and prints their assembler code. Errors are printed
// and the loop continues; Control-D ends it. A line of the form ".ns Name" switches the
// namespace used for statics.
func REPL(namespace string, out io.Writer) error {
	rl, err := readline.New(namespace + "> ")
	if err != nil {
		return err
	}
	defer rl.Close()
	translator := NewTranslator()
	translator.SetNamespace(namespace)
	lineNo := 0
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		lineNo++
		if rest := strings.TrimPrefix(line, ".ns "); rest != line {
			translator.SetNamespace(strings.TrimSpace(rest))
			rl.SetPrompt(translator.Namespace() + "> ")
			continue
		}
		evalLine(translator, line, lineNo, out)
	}
}

func evalLine(translator *Translator, line string, lineNo int, out io.Writer) {
	lines, err := translator.TranslateLine(line, lineNo)
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	for _, asm := range lines {
		fmt.Fprintln(out, asm)
	}
}

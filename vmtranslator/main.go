package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/xiaobogaga/hack/internal/vmtranslator"
	"github.com/xiaobogaga/hack/util"
)

// A simple program to translate hack vm codes to hack assembler. Without -path it reads vm code
// from stdin, interactively when stdin is a terminal.

var (
	path     = flag.String("path", "", "the vm file or the directory of vm files to translate")
	output   = flag.String("o", "./output.asm", "the saved path")
	verbose  = flag.Bool("v", false, "whether print translate result")
	comments = flag.Bool("comments", false, "whether annotate every expansion with its vm command")
	entry    = flag.String("entry", vmtranslator.DefaultMain, "the function called by the initialize code")
	ns       = flag.String("ns", "Main", "the namespace of statics when reading from stdin")
	// Single file programs written without a Sys.init need -wi=false.
	writeInitializeCode = flag.Bool("wi", true, "whether write initialize code")
)

func readSources() ([]vmtranslator.Source, error) {
	if *path == "" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return []vmtranslator.Source{{Name: *ns + util.VMExt, Content: content}}, nil
	}
	files, err := util.CollectFiles(*path, util.VMExt)
	if err != nil {
		return nil, err
	}
	sources := make([]vmtranslator.Source, 0, len(files))
	for _, file := range files {
		content, err := util.ReadSource(file, util.VMExt)
		if err != nil {
			return nil, err
		}
		sources = append(sources, vmtranslator.Source{Name: file, Content: content})
	}
	return sources, nil
}

func translate(sources []vmtranslator.Source) ([]string, error) {
	translator := vmtranslator.NewTranslator()
	translator.SetAnnotate(*comments)
	if *writeInitializeCode {
		translator.WriteBootstrap(*entry)
	}
	for _, source := range sources {
		if err := translator.TranslateFile(util.BaseName(source.Name), source.Content); err != nil {
			return nil, util.WithFile(err, source.Name)
		}
	}
	return translator.Lines(), nil
}

func main() {
	flag.Parse()
	log.SetPrefix("[Translator]: ")
	log.SetFlags(0)
	if *path == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := vmtranslator.REPL(*ns, os.Stdout); err != nil {
			log.Printf("repl stopped, err: %v", err)
			os.Exit(1)
		}
		return
	}
	sources, err := readSources()
	if err != nil {
		log.Printf("failed to read program: %s, err: %v", *path, err)
		os.Exit(1)
	}
	lines, err := translate(sources)
	if err != nil {
		log.Printf("failed to translate program: %s, err: %v", *path, err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Println(strings.Join(lines, "\n"))
	}
	if err := util.WriteLines(*output, lines); err != nil {
		log.Printf("failed to save to path: %s, err: %v", *output, err)
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xiaobogaga/hack/internal/assembler"
	"github.com/xiaobogaga/hack/util"
)

// a simple program accepts hack assemble code files and transforms them to the corresponding
// hack machine language. A directory is assembled file by file, every Foo.asm to a Foo.hack.

var (
	inputPath  = flag.String("i", "./input.asm", "the input hack assemble code file or directory")
	outputPath = flag.String("o", "", "the output hack binary code file, default is next to the input file")
	verbose    = flag.Bool("v", false, "whether print all transformed binary code")
	reset      = flag.Bool("reset", false, "whether every file starts from a fresh symbol table")
	compare    = flag.String("cmp", "", "a hack file to compare the output with, a diff is printed on mismatch")
	symbols    = flag.Bool("sym", false, "whether print the labels and variables of the symbol table")
)

func printSymbols(table *assembler.SymbolTable) {
	for _, entry := range table.Entries() {
		fmt.Printf("%-30s %d\n", entry.Name, entry.Address)
	}
}

func compareWith(file string, codes []string) bool {
	want, err := os.ReadFile(file)
	if err != nil {
		log.Printf("failed to read compare file: %s, err: %v", file, err)
		return false
	}
	got := strings.Join(codes, "\n") + "\n"
	diff := util.Diff(file, strings.ReplaceAll(string(want), "\r\n", "\n"), "output", got)
	if diff != "" {
		fmt.Print(diff)
		return false
	}
	return true
}

func main() {
	flag.Parse()
	log.SetPrefix("[Assembler]: ")
	log.SetFlags(0)
	files, err := util.CollectFiles(*inputPath, util.AsmExt)
	if err != nil {
		log.Printf("failed to open %s, err: %v", *inputPath, err)
		os.Exit(1)
	}
	asm := assembler.CreateAssembler(*reset)
	outputs, err := util.BuildAll(files, func(file string) (util.Output, error) {
		src, err := os.ReadFile(file)
		if err != nil {
			return util.Output{}, err
		}
		codes, err := asm.AssembleFile(assembler.Source{Name: file, Content: src})
		if err != nil {
			return util.Output{}, err
		}
		if *verbose {
			fmt.Println(strings.Join(codes, "\n"))
		}
		if *symbols {
			printSymbols(asm.Table())
		}
		target := util.ReplaceExt(file, util.HackExt)
		if *outputPath != "" && len(files) == 1 {
			target = *outputPath
		}
		return util.Output{Path: target, Lines: codes}, nil
	})
	if err != nil {
		log.Printf("failed to assemble %s, err: %v", *inputPath, err)
		os.Exit(1)
	}
	if *compare != "" && len(outputs) == 1 && !compareWith(*compare, outputs[0].Lines) {
		os.Exit(1)
	}
}

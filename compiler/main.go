package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xiaobogaga/hack/internal/compiler"
	"github.com/xiaobogaga/hack/util"
)

// A simple program to compile jack classes to vm code. Every Foo.jack becomes a Foo.vm.

var (
	path    = flag.String("path", ".", "the jack file or the directory of jack files to compile")
	output  = flag.String("o", "", "the directory to save vm files, default is next to every jack file")
	verbose = flag.Bool("v", false, "whether print the compiled vm code")
)

func compileFile(file string) (util.Output, error) {
	src, err := util.ReadSource(file, util.JackExt)
	if err != nil {
		return util.Output{}, err
	}
	vm, err := compiler.Compile(src)
	if err != nil {
		return util.Output{}, util.WithFile(err, file)
	}
	if *verbose {
		fmt.Print(vm)
	}
	target := util.ReplaceExt(file, util.VMExt)
	if *output != "" {
		target = filepath.Join(*output, filepath.Base(target))
	}
	return util.Output{Path: target, Lines: strings.Split(strings.TrimSuffix(vm, "\n"), "\n")}, nil
}

func main() {
	flag.Parse()
	log.SetPrefix("[Compiler]: ")
	log.SetFlags(0)
	files, err := util.CollectFiles(*path, util.JackExt)
	if err != nil {
		log.Printf("failed to collect jack files from %s, err: %v", *path, err)
		os.Exit(1)
	}
	if _, err := util.BuildAll(files, compileFile); err != nil {
		log.Printf("failed to compile %s, err: %v", *path, err)
		os.Exit(1)
	}
}

// ksymdump builds a symbol table from the currently loaded kernel
// modules and either dumps it or resolves the addresses given on the
// command line. It is the standalone exerciser for the resolution
// engine embedded in the log daemon.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/peterbourgon/ff/v3"
	log "github.com/sirupsen/logrus"

	"github.com/klogd/ksymmod/ksyms"
	"github.com/klogd/ksymmod/modquery"
)

func main() {
	fs := flag.NewFlagSet("ksymdump", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "enable debug logging")
	dump := fs.Bool("dump", false, "dump every module symbol table")
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("KSYMMOD")); err != nil {
		log.Fatal(err)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	table, stats, err := ksyms.Build(modquery.NewProcFS())
	if err != nil {
		log.Fatalf("Cannot load module symbols: %v", err)
	}
	fmt.Printf("Number of modules: %d, symbols: %d\n", stats.Modules, stats.Symbols)

	if *dump {
		for _, mod := range table.Modules() {
			fmt.Printf("Module %s at %#x, %d pages, %d symbols\n",
				mod.Name, mod.Base, mod.Pages, len(mod.Syms))
			for _, sym := range mod.Syms {
				fmt.Printf("\t%#x\t%s\n", sym.Value, sym.Name)
			}
		}
	}

	for _, arg := range fs.Args() {
		addr, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			log.Fatalf("Bad address %q: %v", arg, err)
		}
		if res, ok := table.Resolve(addr); ok {
			fmt.Printf("%#x: %s\n", addr, res)
		} else {
			fmt.Printf("%#x: unresolved\n", addr)
		}
	}
}

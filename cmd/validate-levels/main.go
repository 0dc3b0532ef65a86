package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/chatpls/internal/levels"
)

// #region main
func main() {
	registry := flag.Bool("registry", true, "include the built-in levels")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: validate-levels [--registry=false] [level.json|level.yaml ...]")
	}
	flag.Parse()

	var scenarios []levels.LevelScenario
	if *registry {
		scenarios = append(scenarios, levels.Registry()...)
	}

	failed := false
	for _, path := range flag.Args() {
		s, err := levels.LoadFile(path, false)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
			continue
		}
		scenarios = append(scenarios, s)
	}

	if len(scenarios) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	fmt.Printf("=== Validating %d level(s) ===\n", len(scenarios))
	for _, s := range scenarios {
		fmt.Printf("  %-36s %d turns, entry %s\n", s.ID, len(s.Turns), s.EntryTurnID)
	}

	errs := levels.ValidateAll(scenarios)
	for _, e := range errs {
		fmt.Printf("  ERROR %s\n", e)
	}
	if len(errs) > 0 || failed {
		fmt.Printf("\n%d problem(s) found.\n", len(errs))
		os.Exit(1)
	}
	fmt.Println("\nAll levels valid.")
}

// #endregion main

package ksyms

import (
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/klogd/ksymmod/modquery"
)

// Build constructs a fresh Table from the live module set. The build is
// all-or-nothing: any query failure discards everything constructed so
// far and is returned as the error. A kernel without module support is
// not a failure; the result is an empty table.
func Build(q modquery.Querier) (*Table, Stats, error) {
	buf, count, err := modquery.Grow(modquery.InitialModuleBuffer, q.QueryModules)
	if err != nil {
		if errors.Is(err, modquery.ErrNotSupported) {
			log.Info("No module symbols loaded - modules disabled?")
			return &Table{}, Stats{}, nil
		}
		return nil, Stats{}, fmt.Errorf("querying loaded modules: %w", err)
	}

	names, err := modquery.ParseModuleList(buf, count)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("querying loaded modules: %w", err)
	}
	if len(names) == 0 {
		log.Info("No module symbols loaded - modules disabled?")
		return &Table{}, Stats{}, nil
	}
	log.Debugf("Loading kernel module symbols - %d modules reported", len(names))

	table := &Table{modules: make([]Module, 0, len(names))}
	for _, name := range names {
		mod, err := buildModule(q, name)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("module %s: %w", name, err)
		}
		table.modules = append(table.modules, mod)
		table.symbols += len(mod.Syms)
	}

	for i := range table.modules {
		sortSymbols(table.modules[i].Syms)
	}

	stats := Stats{Modules: len(table.modules), Symbols: table.symbols}
	if stats.Symbols == 0 {
		log.Info("No module symbols loaded.")
	} else {
		log.Infof("Loaded %s.", stats)
	}
	return table, stats, nil
}

func buildModule(q modquery.Querier, name string) (Module, error) {
	info, err := q.QueryInfo(name)
	if err != nil {
		return Module{}, fmt.Errorf("reading module info: %w", err)
	}

	buf, count, err := modquery.Grow(modquery.InitialSymbolBuffer,
		func(b []byte) (int, error) { return q.QuerySymbols(name, b) })
	if err != nil {
		return Module{}, fmt.Errorf("querying symbol list: %w", err)
	}
	raw, err := modquery.ParseSymbolList(buf, count)
	if err != nil {
		return Module{}, fmt.Errorf("querying symbol list: %w", err)
	}

	mod := Module{
		Name:  name,
		Base:  info.Base,
		Pages: info.Pages,
	}
	if len(raw) > 0 {
		mod.Syms = make([]Symbol, 0, len(raw))
		for _, sym := range raw {
			mod.Syms = append(mod.Syms, Symbol{
				Value: sym.Value,
				Name:  name + ":" + sym.Name,
			})
		}
	}
	return mod, nil
}

// sortSymbols orders the entries ascending by address. The sort is
// stable so symbols sharing an address keep their reported order.
func sortSymbols(syms []Symbol) {
	if len(syms) < 2 {
		return
	}
	sort.SliceStable(syms, func(i, j int) bool {
		return syms[i].Value < syms[j].Value
	})
}

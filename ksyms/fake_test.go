package ksyms

import (
	"errors"

	"github.com/klogd/ksymmod/modquery"
)

var errQueryDenied = errors.New("query denied")

type fakeModule struct {
	name string
	info modquery.Info
	syms []modquery.Symbol
}

// fakeQuerier serves a canned module set through the packed protocol,
// so builds in the tests go through the same growth loop as production.
type fakeQuerier struct {
	mods        []fakeModule
	unsupported bool
	infoFail    string // module whose info query fails
	symsFail    string // module whose symbol query fails
}

func (f *fakeQuerier) QueryModules(buf []byte) (int, error) {
	if f.unsupported {
		return 0, modquery.ErrNotSupported
	}
	names := make([]string, len(f.mods))
	for i, m := range f.mods {
		names[i] = m.name
	}
	return modquery.EncodeModuleList(names, buf)
}

func (f *fakeQuerier) QueryInfo(name string) (modquery.Info, error) {
	if name == f.infoFail {
		return modquery.Info{}, errQueryDenied
	}
	for _, m := range f.mods {
		if m.name == name {
			return m.info, nil
		}
	}
	return modquery.Info{}, errQueryDenied
}

func (f *fakeQuerier) QuerySymbols(name string, buf []byte) (int, error) {
	if name == f.symsFail {
		return 0, errQueryDenied
	}
	for _, m := range f.mods {
		if m.name == name {
			return modquery.EncodeSymbolList(m.syms, buf)
		}
	}
	return 0, errQueryDenied
}

// oneModule is the module set used throughout: one page at 0x1000 with
// three exported symbols.
func oneModule() *fakeQuerier {
	return &fakeQuerier{mods: []fakeModule{{
		name: "M1",
		info: modquery.Info{Base: 0x1000, Pages: 1},
		syms: []modquery.Symbol{
			{Value: 0x1000, Name: "a"},
			{Value: 0x1010, Name: "b"},
			{Value: 0x1020, Name: "c"},
		},
	}}}
}

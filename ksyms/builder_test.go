package ksyms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klogd/ksymmod/modquery"
)

func TestBuildQualifiesAndSortsSymbols(t *testing.T) {
	q := &fakeQuerier{mods: []fakeModule{{
		name: "scsi_mod",
		info: modquery.Info{Base: 0x4000, Pages: 2},
		syms: []modquery.Symbol{
			{Value: 0x4200, Name: "late"},
			{Value: 0x4000, Name: "early"},
			{Value: 0x4100, Name: "middle"},
		},
	}}}

	table, stats, err := Build(q)
	require.NoError(t, err)
	require.Equal(t, Stats{Modules: 1, Symbols: 3}, stats)

	mods := table.Modules()
	require.Len(t, mods, 1)
	syms := mods[0].Syms
	require.Len(t, syms, 3)
	for i := 1; i < len(syms); i++ {
		assert.LessOrEqual(t, syms[i-1].Value, syms[i].Value)
	}
	assert.Equal(t, "scsi_mod:early", syms[0].Name)
	assert.Equal(t, "scsi_mod:middle", syms[1].Name)
	assert.Equal(t, "scsi_mod:late", syms[2].Name)
}

func TestBuildDuplicateAddressesKeepReportedOrder(t *testing.T) {
	q := &fakeQuerier{mods: []fakeModule{{
		name: "dup",
		info: modquery.Info{Base: 0x1000, Pages: 1},
		syms: []modquery.Symbol{
			{Value: 0x1010, Name: "alias_one"},
			{Value: 0x1000, Name: "start"},
			{Value: 0x1010, Name: "alias_two"},
		},
	}}}

	table, _, err := Build(q)
	require.NoError(t, err)
	syms := table.Modules()[0].Syms
	require.Equal(t, "dup:start", syms[0].Name)
	require.Equal(t, "dup:alias_one", syms[1].Name)
	require.Equal(t, "dup:alias_two", syms[2].Name)
}

func TestBuildUnsupportedKernelIsNotAnError(t *testing.T) {
	table, stats, err := Build(&fakeQuerier{unsupported: true})
	require.NoError(t, err)
	require.Equal(t, Stats{}, stats)
	require.Empty(t, table.Modules())
}

func TestBuildNoModulesIsNotAnError(t *testing.T) {
	table, stats, err := Build(&fakeQuerier{})
	require.NoError(t, err)
	require.Equal(t, Stats{}, stats)
	require.Empty(t, table.Modules())
}

func TestBuildOneBadModulePoisonsTheWholeBuild(t *testing.T) {
	mods := make([]fakeModule, 5)
	for i, name := range []string{"m1", "m2", "m3", "m4", "m5"} {
		mods[i] = fakeModule{
			name: name,
			info: modquery.Info{Base: uint64(0x1000 * (i + 1)), Pages: 1},
			syms: []modquery.Symbol{{Value: uint64(0x1000 * (i + 1)), Name: "f"}},
		}
	}

	table, _, err := Build(&fakeQuerier{mods: mods, symsFail: "m3"})
	require.ErrorIs(t, err, errQueryDenied)
	require.Nil(t, table)

	table, _, err = Build(&fakeQuerier{mods: mods, infoFail: "m3"})
	require.ErrorIs(t, err, errQueryDenied)
	require.Nil(t, table)
}

func TestBuildIsIdempotent(t *testing.T) {
	q := oneModule()
	first, stats1, err := Build(q)
	require.NoError(t, err)
	second, stats2, err := Build(q)
	require.NoError(t, err)

	require.Equal(t, stats1, stats2)
	probes := []uint64{0x1000, 0x1015, 0x1025, 0x5500, 0x9999}
	for _, addr := range probes {
		r1, ok1 := first.Resolve(addr)
		r2, ok2 := second.Resolve(addr)
		assert.Equal(t, ok1, ok2, "probe %#x", addr)
		assert.Equal(t, r1, r2, "probe %#x", addr)
	}
}

func TestBuildSymbollessModule(t *testing.T) {
	q := &fakeQuerier{mods: []fakeModule{{
		name: "quiet",
		info: modquery.Info{Base: 0x5000, Pages: 1},
	}}}
	table, stats, err := Build(q)
	require.NoError(t, err)
	require.Equal(t, Stats{Modules: 1, Symbols: 0}, stats)
	require.Empty(t, table.Modules()[0].Syms)
}

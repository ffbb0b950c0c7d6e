package ksyms

// Resolve locates addr against the snapshot. Modules are tried in
// reported order and the first one that accounts for the address wins:
// first by nearest preceding symbol, then by module address range. The
// boolean is false when no module accounts for the address; callers
// render the raw address in that case.
//
// Resolve never mutates the table and may be called concurrently.
func (t *Table) Resolve(addr uint64) (Resolution, bool) {
	if t == nil {
		return Resolution{}, false
	}
	for i := range t.modules {
		m := &t.modules[i]

		// Walk the sorted symbols tracking the previous entry; the
		// first entry past addr resolves against the one before it.
		// Addresses below the first symbol fall through to the range
		// check.
		if len(m.Syms) >= 2 && addr >= m.Syms[0].Value {
			last := &m.Syms[0]
			for n := 1; n < len(m.Syms); n++ {
				if m.Syms[n].Value > addr {
					return Resolution{
						Name:   last.Name,
						Offset: addr - last.Value,
						Size:   m.Syms[n].Value - last.Value,
					}, true
				}
				last = &m.Syms[n]
			}
		}

		// The address may still belong to this module: past the last
		// symbol, below the first one, or in a module that exports no
		// symbols at all.
		if addr < m.Base || addr >= m.end() {
			continue
		}
		if len(m.Syms) > 0 {
			last := &m.Syms[len(m.Syms)-1]
			return Resolution{
				Name:   last.Name,
				Offset: addr - last.Value,
				Size:   m.end() - addr,
			}, true
		}
		return Resolution{
			Name:   m.Name,
			Offset: addr - m.Base,
			Size:   m.Pages * pageSize,
		}, true
	}
	return Resolution{}, false
}

package modquery

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrPermissions is returned when kallsyms addresses read back as zero,
// which is what unprivileged readers see.
var ErrPermissions = errors.New("unable to read symbol addresses - check capabilities")

const pageSize = 4096

// ProcFS is the production Querier. It reads /proc/modules,
// /sys/module/<name>/ and the per-module portion of /proc/kallsyms,
// and re-encodes the answers through the packed protocol so callers go
// through the same growth contract as with any other responder.
type ProcFS struct {
	root string
}

// NewProcFS returns a Querier rooted at "/". The root is only varied by
// the test suite.
func NewProcFS() *ProcFS {
	return &ProcFS{root: "/"}
}

func (p *ProcFS) QueryModules(buf []byte) (int, error) {
	f, err := os.Open(filepath.Join(p.root, "proc/modules"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("no /proc/modules: %w", ErrNotSupported)
		}
		return 0, err
	}
	defer f.Close()

	var names []string
	for scanner := bufio.NewScanner(f); scanner.Scan(); {
		// name size refcount deps state address
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	return EncodeModuleList(names, buf)
}

func (p *ProcFS) QueryInfo(name string) (Info, error) {
	base, err := p.sysfsUint(name, "sections/.text")
	if err != nil {
		return Info{}, fmt.Errorf("module %s base address: %w", name, err)
	}
	size, err := p.sysfsUint(name, "coresize")
	if err != nil {
		return Info{}, fmt.Errorf("module %s size: %w", name, err)
	}
	return Info{
		Base:  base,
		Pages: (size + pageSize - 1) / pageSize,
	}, nil
}

func (p *ProcFS) QuerySymbols(name string, buf []byte) (int, error) {
	f, err := os.Open(filepath.Join(p.root, "proc/kallsyms"))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	tag := "[" + name + "]"
	var syms []Symbol
	zeroes := 0
	for scanner := bufio.NewScanner(f); scanner.Scan(); {
		// address type name [module]
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[3] != tag {
			continue
		}
		// Text symbols only, see 'man nm'.
		if strings.IndexByte("TtVvWw", fields[1][0]) == -1 {
			continue
		}
		value, err := strconv.ParseUint(fields[0], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("bad kallsyms address %q: %w", fields[0], err)
		}
		if value == 0 {
			zeroes++
		}
		syms = append(syms, Symbol{Value: value, Name: fields[2]})
	}
	if len(syms) > 0 && zeroes == len(syms) {
		return 0, ErrPermissions
	}
	return EncodeSymbolList(syms, buf)
}

func (p *ProcFS) sysfsUint(mod, knob string) (uint64, error) {
	text, err := os.ReadFile(filepath.Join(p.root, "sys/module", mod, knob))
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(text)), 0, 64)
}

package modquery

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// Module list encoding: the names packed back to back as NUL-terminated
// strings. Symbol list encoding: symEntrySize-byte records at the start
// of the buffer, each holding the symbol address and the byte offset of
// its NUL-terminated name within the same buffer, followed by the name
// area. This mirrors the classic query_module(2) layouts.

const symEntrySize = 16

// EncodeModuleList packs names into buf and returns the name count.
// Returns unix.ENOSPC if buf cannot hold the full list.
func EncodeModuleList(names []string, buf []byte) (int, error) {
	pos := 0
	for _, name := range names {
		need := len(name) + 1
		if pos+need > len(buf) {
			return 0, unix.ENOSPC
		}
		copy(buf[pos:], name)
		buf[pos+len(name)] = 0
		pos += need
	}
	return len(names), nil
}

// ParseModuleList recovers count names from the packed buffer as owned
// strings.
func ParseModuleList(buf []byte, count int) ([]string, error) {
	names := make([]string, 0, count)
	pos := 0
	for i := 0; i < count; i++ {
		end := bytes.IndexByte(buf[pos:], 0)
		if end < 0 {
			return nil, fmt.Errorf("truncated module list at entry %d", i)
		}
		names = append(names, string(buf[pos:pos+end]))
		pos += end + 1
	}
	return names, nil
}

// EncodeSymbolList packs syms into buf and returns the record count.
// Returns unix.ENOSPC if buf cannot hold the records plus the name area.
func EncodeSymbolList(syms []Symbol, buf []byte) (int, error) {
	recEnd := len(syms) * symEntrySize
	if recEnd > len(buf) {
		return 0, unix.ENOSPC
	}
	strPos := recEnd
	for i, sym := range syms {
		need := len(sym.Name) + 1
		if strPos+need > len(buf) {
			return 0, unix.ENOSPC
		}
		binary.LittleEndian.PutUint64(buf[i*symEntrySize:], sym.Value)
		binary.LittleEndian.PutUint64(buf[i*symEntrySize+8:], uint64(strPos))
		copy(buf[strPos:], sym.Name)
		buf[strPos+len(sym.Name)] = 0
		strPos += need
	}
	return len(syms), nil
}

// ParseSymbolList decodes count records from the packed buffer. Names
// are copied into owned strings; no reference into buf survives the
// call.
func ParseSymbolList(buf []byte, count int) ([]Symbol, error) {
	if count*symEntrySize > len(buf) {
		return nil, fmt.Errorf("symbol record area overruns buffer: %d records, %d bytes",
			count, len(buf))
	}
	syms := make([]Symbol, 0, count)
	for i := 0; i < count; i++ {
		value := binary.LittleEndian.Uint64(buf[i*symEntrySize:])
		nameOff := binary.LittleEndian.Uint64(buf[i*symEntrySize+8:])
		if nameOff >= uint64(len(buf)) {
			return nil, fmt.Errorf("symbol %d name offset %#x out of range", i, nameOff)
		}
		end := bytes.IndexByte(buf[nameOff:], 0)
		if end < 0 {
			return nil, fmt.Errorf("unterminated name for symbol %d", i)
		}
		syms = append(syms, Symbol{
			Value: value,
			Name:  string(buf[nameOff : nameOff+uint64(end)]),
		})
	}
	return syms, nil
}

package abi

// ProxyMemory is the name under which ProxyModule exports its memory.
const ProxyMemory = "memory"

// ProxyModule returns the binary of a WebAssembly module that imports every
// entry point in Signatures from ModuleName and re-exports it unchanged under
// the same name, plus one page of linear memory exported as ProxyMemory.
//
// Host functions cannot be called from Go directly. Instantiating the proxy
// after the host module gives embedders and tests a guest whose exports run
// the entry points with a real caller module, so record_read and
// record_write copy through the proxy's memory.
func ProxyModule() []byte { return buildProxy(true) }

func buildProxy(withMemory bool) []byte {
	n := uint32(len(Signatures))

	var types, imports, funcs, exports, code []byte
	types = appendU32(types, n)
	imports = appendU32(imports, n)
	funcs = appendU32(funcs, n)
	code = appendU32(code, n)

	nexports := n
	if withMemory {
		nexports++
	}
	exports = appendU32(exports, nexports)

	for i, s := range Signatures {
		idx := uint32(i)

		types = append(types, 0x60)
		types = appendU32(types, uint32(len(s.Params)))
		for _, p := range s.Params {
			types = append(types, p)
		}
		types = appendU32(types, uint32(len(s.Results)))
		for _, r := range s.Results {
			types = append(types, r)
		}

		imports = appendName(imports, ModuleName)
		imports = appendName(imports, s.Name)
		imports = append(imports, 0x00) // func
		imports = appendU32(imports, idx)

		funcs = appendU32(funcs, idx)

		exports = appendName(exports, s.Name)
		exports = append(exports, 0x00) // func
		exports = appendU32(exports, n+idx)

		body := []byte{0x00} // no locals
		for p := range s.Params {
			body = append(body, 0x20) // local.get
			body = appendU32(body, uint32(p))
		}
		body = append(body, 0x10) // call
		body = appendU32(body, idx)
		body = append(body, 0x0b) // end
		code = appendU32(code, uint32(len(body)))
		code = append(code, body...)
	}

	out := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	out = appendSection(out, 1, types)
	out = appendSection(out, 2, imports)
	out = appendSection(out, 3, funcs)
	if withMemory {
		mem := appendU32(nil, 1)
		mem = append(mem, 0x00) // min only
		mem = appendU32(mem, 1)
		out = appendSection(out, 5, mem)

		exports = appendName(exports, ProxyMemory)
		exports = append(exports, 0x02) // memory
		exports = appendU32(exports, 0)
	}
	out = appendSection(out, 7, exports)
	out = appendSection(out, 10, code)
	return out
}

// appendU32 appends v as unsigned LEB128.
func appendU32(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

func appendName(b []byte, s string) []byte {
	b = appendU32(b, uint32(len(s)))
	return append(b, s...)
}

func appendSection(b []byte, id byte, body []byte) []byte {
	b = append(b, id)
	b = appendU32(b, uint32(len(body)))
	return append(b, body...)
}

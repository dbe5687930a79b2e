package disasm

// dictVariants expands a dictionary operation into its slice, signed and
// unsigned key variants, each with an optional REF value form.
func dictVariants(first uint64, base string, refs bool) []entry {
	var out []string
	for _, k := range []string{"", "I", "U"} {
		name := "DICT" + k + base
		if refs {
			out = append(out, name, name+"REF")
		} else {
			out = append(out, name)
		}
	}
	return names(first, 16, out...)
}

func dictOps() []entry {
	out := []entry{
		opB[Quiet]("F406", "LDDICT"),
		opB[Quiet]("F407", "PLDDICT"),
		op("F4A6_", "DICTPUSHCONST", length(10, 0), cellRef()),
		op("F4AE_", "PFXDICTSWITCH", length(10, 0), cellRef()),
	}
	out = append(out, names(0xf400, 16, "STDICT", "SKIPDICT", "LDDICTS", "PLDDICTS", "LDDICT", "PLDDICT")...)
	out = append(out, dictVariants(0xf40a, "GET", true)...)
	out = append(out, dictVariants(0xf412, "SET", true)...)
	out = append(out, dictVariants(0xf41a, "SETGET", true)...)
	out = append(out, dictVariants(0xf422, "REPLACE", true)...)
	out = append(out, dictVariants(0xf42a, "REPLACEGET", true)...)
	out = append(out, dictVariants(0xf432, "ADD", true)...)
	out = append(out, dictVariants(0xf43a, "ADDGET", true)...)
	out = append(out, dictVariants(0xf441, "SETB", false)...)
	out = append(out, dictVariants(0xf445, "SETGETB", false)...)
	out = append(out, dictVariants(0xf449, "REPLACEB", false)...)
	out = append(out, dictVariants(0xf44d, "REPLACEGETB", false)...)
	out = append(out, dictVariants(0xf451, "ADDB", false)...)
	out = append(out, dictVariants(0xf455, "ADDGETB", false)...)
	out = append(out, dictVariants(0xf459, "DEL", false)...)
	out = append(out, dictVariants(0xf462, "DELGET", true)...)
	out = append(out, dictVariants(0xf469, "GETOPTREF", false)...)
	out = append(out, dictVariants(0xf46d, "SETGETOPTREF", false)...)
	out = append(out, names(0xf470, 16, "PFXDICTSET", "PFXDICTREPLACE", "PFXDICTADD", "PFXDICTDEL")...)
	for i, k := range []string{"", "I", "U"} {
		out = append(out, names(0xf474+uint64(4*i), 16,
			"DICT"+k+"GETNEXT", "DICT"+k+"GETNEXTEQ", "DICT"+k+"GETPREV", "DICT"+k+"GETPREVEQ")...)
	}
	out = append(out, dictVariants(0xf482, "MIN", true)...)
	out = append(out, dictVariants(0xf48a, "MAX", true)...)
	out = append(out, dictVariants(0xf492, "REMMIN", true)...)
	out = append(out, dictVariants(0xf49a, "REMMAX", true)...)
	out = append(out, names(0xf4a0, 16, "DICTIGETJMP", "DICTUGETJMP", "DICTIGETEXEC", "DICTUGETEXEC")...)
	out = append(out, names(0xf4a8, 16, "PFXDICTGETQ", "PFXDICTGET", "PFXDICTGETJMP", "PFXDICTGETEXEC")...)
	out = append(out, names(0xf4b1, 16, "SUBDICTGET", "SUBDICTIGET", "SUBDICTUGET")...)
	out = append(out, names(0xf4b5, 16, "SUBDICTRPGET", "SUBDICTIRPGET", "SUBDICTURPGET")...)
	out = append(out, names(0xf4bc, 16, "DICTIGETJMPZ", "DICTUGETJMPZ", "DICTIGETEXECZ", "DICTUGETEXECZ")...)
	return out
}

package disasm

import "fmt"

func controlOps() []entry {
	out := []entry{
		op("D8", "CALLX"),
		op("D9", "JMPX"),
		op("DA", "CALLXARGS", pargs(4), rargs(4)),
		op("DB0", "CALLXARGS", pargs(4), fixedRargs(-1)),
		op("DB1", "JMPXARGS", pargs(4)),
		op("DB2", "RETARGS", rargs(4)),
		op("DB36", "CALLCCARGS", pargs(4), rargs(4)),
		op("DB3C", "CALLREF", codeRef()),
		op("DB3D", "JMPREF", codeRef()),
		op("DB3E", "JMPREFDATA", codeRef()),
		op("E300", "IFREF", codeRef()),
		op("E301", "IFNOTREF", codeRef()),
		op("E302", "IFJMPREF", codeRef()),
		op("E303", "IFNOTJMPREF", codeRef()),
		op("E30D", "IFREFELSE", codeRef()),
		op("E30E", "IFELSEREF", codeRef()),
		op("E30F", "IFREFELSEREF", codeRef(), codeRef()),
		op("E39_", "IFBITJMP", integer(5, 0)),
		op("E3B_", "IFNBITJMP", integer(5, 0)),
		op("E3D_", "IFBITJMPREF", integer(5, 0), codeRef()),
		op("E3F_", "IFNBITJMPREF", integer(5, 0), codeRef()),
		op("EC", "SETCONTARGS", rargs(4), nargs(4)),
		op("ED0", "RETURNARGS", pargs(4)),
		op("EE", "BLESSARGS", rargs(4), nargs(4)),
		op("F0", "CALL", nargsRaw(8)),
		op("F12_", "CALL", nargsRaw(14)),
		op("F16_", "JMPDICT", nargsRaw(14)),
		op("F1A_", "PREPARE", nargsRaw(14)),
	}
	out = append(out, names(0xdb30, 16,
		"RET", "RETALT", "RETBOOL", "", "CALLCC", "JMPXDATA", "", "",
		"CALLXVARARGS", "RETVARARGS", "JMPXVARARGS", "CALLCCVARARGS", "", "", "", "RETDATA")...)
	out = append(out, names(0xdc, 8,
		"IFRET", "IFNOTRET", "IF", "IFNOT", "IFJMP", "IFNOTJMP", "IFELSE")...)
	out = append(out, names(0xe304, 16,
		"CONDSEL", "CONDSELCHK", "", "", "IFRETALT", "IFNOTRETALT")...)
	out = append(out, names(0xe314, 16,
		"REPEATBRK", "REPEATENDBRK", "UNTILBRK", "UNTILENDBRK",
		"WHILEBRK", "WHILEENDBRK", "AGAINBRK", "AGAINENDBRK")...)
	out = append(out, names(0xe4, 8,
		"REPEAT", "REPEATEND", "UNTIL", "UNTILEND", "WHILE", "WHILEEND", "AGAIN", "AGAINEND")...)
	out = append(out, names(0xed10, 16, "RETURNVARARGS", "SETCONTVARARGS", "SETNUMVARARGS")...)
	out = append(out, names(0xed1e, 16, "BLESS", "BLESSVARARGS")...)
	for i, name := range []string{
		"PUSHCTR", "POPCTR", "SETCONTCTR", "SETRETCTR", "SETALTCTR",
		"POPSAVE", "SAVE", "SAVEALT", "SAVEBOTH",
	} {
		out = append(out, op(fmt.Sprintf("%03x", 0xed4+i), name, creg()))
	}
	out = append(out, names(0xede0, 16, "PUSHCTRX", "POPCTRX", "SETCONTCTRX")...)
	out = append(out, names(0xedf0, 16,
		"COMPOS", "COMPOSALT", "COMPOSBOTH", "ATEXIT", "ATEXITALT", "SETEXITALT",
		"THENRET", "THENRETALT", "INVERT", "BOOLEVAL", "SAMEALT", "SAMEALTSAVE")...)
	return out
}

func exceptionOps() []entry {
	out := []entry{
		op("F22_", "THROW", integer(6, 0)),
		op("F26_", "THROWIF", integer(6, 0)),
		op("F2A_", "THROWIFNOT", integer(6, 0)),
		op("F2C4_", "THROW", integer(11, 0)),
		op("F2CC_", "THROWARG", integer(11, 0)),
		op("F2D4_", "THROWIF", integer(11, 0)),
		op("F2DC_", "THROWARGIF", integer(11, 0)),
		op("F2E4_", "THROWIFNOT", integer(11, 0)),
		op("F2EC_", "THROWARGIFNOT", integer(11, 0)),
		op("F2FF", "TRY"),
		op("F3", "TRYARGS", pargs(4), rargs(4)),
	}
	out = append(out, names(0xf2f0, 16,
		"THROWANY", "THROWARGANY", "THROWANYIF", "THROWARGANYIF", "THROWANYIFNOT", "THROWARGANYIFNOT")...)
	return out
}

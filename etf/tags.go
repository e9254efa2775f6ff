package etf

// Erlang external term format tag bytes. Named the way
// _examples/halturin-node/etf/read.go names them (ett-prefixed), trimmed to
// the tags this codec actually decodes/encodes plus the ones it must name
// in error messages without decoding (Pid/Port/Ref/Fun/cache-ref — out of
// scope per spec.md's Non-goals and the process-management exclusion).
const (
	ettVersion = byte(131)

	ettCompressed = 'P'

	ettAtom     = 'd'
	ettSmallInt = 'a'
	ettInt      = 'b'
	ettSmallBig = 'n'
	ettLargeBig = 'o'
	ettFloat    = 'F'
	ettBinary   = 'm'
	ettNil      = 'j'
	ettString   = 'k'
	ettList     = 'l'
	ettSmallTup = 'h'
	ettLargeTup = 'i'
	ettMap      = 't'

	// Recognized only so DecodeError can name them; never decoded into a
	// term. Carrying a Pid/Ref/Port means addressing an Erlang process,
	// which is transport/process-management glue this codec does not speak.
	ettPid       = 'g'
	ettNewPid    = 'X'
	ettPort      = 'f'
	ettNewPort   = 'Y'
	ettRef       = 'e'
	ettNewRef    = 'r'
	ettNewerRef  = 'Z'
	ettFun       = 'u'
	ettNewFun    = 'p'
	ettExport    = 'q'
	ettCacheRef  = 'R'
	ettNewCache  = 'N'
	ettAtomUTF8  = 'v'
	ettSmallAtom = 's'
	ettSmallAtomUTF8 = 'w'
)

var tagNames = map[byte]string{
	ettCompressed:    "COMPRESSED",
	ettAtom:          "ATOM_EXT",
	ettSmallInt:      "SMALL_INTEGER_EXT",
	ettInt:           "INTEGER_EXT",
	ettSmallBig:      "SMALL_BIG_EXT",
	ettLargeBig:      "LARGE_BIG_EXT",
	ettFloat:         "NEW_FLOAT_EXT",
	ettBinary:        "BINARY_EXT",
	ettNil:           "NIL_EXT",
	ettString:        "STRING_EXT",
	ettList:          "LIST_EXT",
	ettSmallTup:      "SMALL_TUPLE_EXT",
	ettLargeTup:      "LARGE_TUPLE_EXT",
	ettMap:           "MAP_EXT",
	ettPid:           "PID_EXT",
	ettNewPid:        "NEW_PID_EXT",
	ettPort:          "PORT_EXT",
	ettNewPort:       "NEW_PORT_EXT",
	ettRef:           "REFERENCE_EXT",
	ettNewRef:        "NEW_REFERENCE_EXT",
	ettNewerRef:      "NEWER_REFERENCE_EXT",
	ettFun:           "FUN_EXT",
	ettNewFun:        "NEW_FUN_EXT",
	ettExport:        "EXPORT_EXT",
	ettCacheRef:      "ATOM_CACHE_REF",
	ettNewCache:      "NEW_CACHE_EXT",
	ettAtomUTF8:      "ATOM_UTF8_EXT",
	ettSmallAtom:     "SMALL_ATOM_EXT",
	ettSmallAtomUTF8: "SMALL_ATOM_UTF8_EXT",
}

func tagName(t byte) string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// OpaqueMarker is the reserved atom name that tags a foreign-language value
// crossing the ETF boundary (spec.md §4.5).
const OpaqueMarker = "$erlport.opaque"

const (
	atomTrue      = "true"
	atomFalse     = "false"
	atomUndefined = "undefined"
)

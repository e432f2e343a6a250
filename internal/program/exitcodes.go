package program

// Per-program exit code tables. These annotate an exit code with a short
// human-readable label for display; they never influence the lifecycle state
// machine. Negative codes cover "terminated by signal" on both host
// conventions: -9 (Unix wait status) and -1 (Windows).

// UnknownLabel is returned for exit codes absent from a program's table.
const UnknownLabel = "Unknown"

var proverExits = map[int]string{
	0:   "Proof",
	1:   "Fatal Error",
	2:   "Exhausted",
	3:   "Memory Limit",
	4:   "Time Limit",
	5:   "Given Limit",
	6:   "Kept Limit",
	7:   "Action Exit",
	101: "Interrupted",
	102: "Crashed",
	-9:  "Killed",
	-1:  "Killed",
}

var mace4Exits = map[int]string{
	0:   "Model Found",
	1:   "Fatal Error",
	2:   "Domain Too Small",
	3:   "Memory Limit",
	4:   "Time Limit",
	5:   "Max Models",
	6:   "Domain Size Limit",
	7:   "Action Exit",
	101: "Interrupted",
	102: "Crashed",
	-9:  "Killed",
	-1:  "Killed",
}

var filterExits = map[int]string{
	0: "Success",
	1: "Error",
	2: "No Models",
}

var formatExits = map[int]string{
	0: "Success",
	1: "Error",
	2: "Invalid Format",
}

var exitTables = map[Type]map[int]string{
	Prover9:      proverExits,
	Mace4:        mace4Exits,
	Isofilter:    filterExits,
	Isofilter2:   filterExits,
	Interpformat: formatExits,
	Prooftrans:   formatExits,
}

// ExitLabel maps (program, exit code) to its display label.
func ExitLabel(t Type, code int) string {
	if label, ok := exitTables[t][code]; ok {
		return label
	}
	return UnknownLabel
}

// ExitTable returns a copy of the exit code table for t.
func ExitTable(t Type) map[int]string {
	src := exitTables[t]
	out := make(map[int]string, len(src))
	for code, label := range src {
		out[code] = label
	}
	return out
}

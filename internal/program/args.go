package program

// Args builds the fixed, program-specific argument vector from a sparse
// option map. Options absent from the map contribute no arguments, and
// unrecognized options are ignored rather than rejected.
//
// Option keys per program:
//
//	mace4:        none (always receives -c for cooked model output)
//	isofilter*:   wrap, ignore_constants, check (bool);
//	              check-value, output-value (string)
//	interpformat: format (string)
//	prooftrans:   format (string); expand, renumber, striplabels (bool)
func Args(t Type, options map[string]any) []string {
	switch t {
	case Mace4:
		return []string{"-c"}
	case Isofilter, Isofilter2:
		return filterArgs(options)
	case Interpformat:
		return formatArgs(options)
	case Prooftrans:
		args := formatArgs(options)
		for _, flag := range []string{"expand", "renumber", "striplabels"} {
			if boolOpt(options, flag) {
				args = append(args, flag)
			}
		}
		return args
	}
	return nil
}

func filterArgs(options map[string]any) []string {
	var args []string
	if boolOpt(options, "wrap") {
		args = append(args, "wrap")
	}
	if boolOpt(options, "ignore_constants") {
		args = append(args, "ignore_constants")
	}
	if boolOpt(options, "check") {
		args = append(args, "check")
		if v, ok := stringOpt(options, "check-value"); ok {
			args = append(args, v)
		}
	}
	if v, ok := stringOpt(options, "output-value"); ok {
		args = append(args, "output", v)
	}
	return args
}

func formatArgs(options map[string]any) []string {
	if v, ok := stringOpt(options, "format"); ok {
		return []string{v}
	}
	return nil
}

func boolOpt(options map[string]any, key string) bool {
	v, ok := options[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func stringOpt(options map[string]any, key string) (string, bool) {
	v, ok := options[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

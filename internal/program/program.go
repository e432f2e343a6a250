package program

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Type identifies one of the six external LADR tools this supervisor can
// invoke. The set is closed; anything else is rejected at parse time.
type Type string

const (
	Prover9      Type = "prover9"
	Mace4        Type = "mace4"
	Isofilter    Type = "isofilter"
	Isofilter2   Type = "isofilter2"
	Interpformat Type = "interpformat"
	Prooftrans   Type = "prooftrans"
)

// All returns the closed set of program types in a stable order.
func All() []Type {
	return []Type{Prover9, Mace4, Isofilter, Isofilter2, Interpformat, Prooftrans}
}

func (t Type) String() string { return string(t) }

// Valid reports whether t is a member of the closed set.
func (t Type) Valid() bool {
	switch t {
	case Prover9, Mace4, Isofilter, Isofilter2, Interpformat, Prooftrans:
		return true
	}
	return false
}

// Parse converts a string identifier to a Type.
func Parse(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown program %q", s)
	}
	return t, nil
}

// ErrNotFound is returned by Resolve when no existing, executable candidate
// is found for a program.
var ErrNotFound = errors.New("binary not found or not executable")

// suffixes are probed in order: the bare name, then a shell wrapper, then a
// batch wrapper, then a Windows binary.
var suffixes = []string{"", ".sh", ".bat", ".exe"}

// Resolve locates the executable for t under binDir by probing platform
// suffix conventions. The first existing, executable candidate wins.
func Resolve(binDir string, t Type) (string, error) {
	base := filepath.Join(binDir, t.String())
	for _, suffix := range suffixes {
		candidate := base + suffix
		if binaryOK(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", t, ErrNotFound)
}

// binaryOK reports whether path is a regular file with an execute bit set.
func binaryOK(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return false
	}
	return fi.Mode().Perm()&0o111 != 0
}

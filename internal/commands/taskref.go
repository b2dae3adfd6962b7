package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	ID    int64 // server id, set when ByPos is false
	Pos   int   // 1-based position in the listing, set when ByPos is true
	ByPos bool
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Accepted forms:
//  1. "<digits>"  → server id (as printed in the first column of list)
//  2. "#<digits>" → position in the current listing
//  3. pos > 0 (from --pos) with no args → position
//
// Giving both a positional reference and --pos is an error.
func ParseTaskRef(args []string, pos int) (TaskRef, error) {
	if pos != 0 {
		if len(args) > 0 {
			return TaskRef{}, errors.New("cannot use both --pos and a task id")
		}
		if pos < 1 {
			return TaskRef{}, fmt.Errorf("task position out of range: %d", pos)
		}
		return TaskRef{Pos: pos, ByPos: true}, nil
	}

	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	arg := args[0]
	if rest, ok := strings.CutPrefix(arg, "#"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || !isAllDigits(rest) {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		if n < 1 {
			return TaskRef{}, fmt.Errorf("task position out of range: %d", n)
		}
		return TaskRef{Pos: n, ByPos: true}, nil
	}

	if !isAllDigits(arg) {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
	}
	return TaskRef{ID: id}, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

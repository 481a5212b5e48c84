package progress

import "fmt"

// Status is a node's position in the progress lattice.
// The order is locked < available < active < mastered.
type Status string

const (
	StatusLocked    Status = "locked"    // One or more requirements not yet mastered
	StatusAvailable Status = "available" // Requirements met; not started
	StatusActive    Status = "active"    // Unlocked by the user and in progress
	StatusMastered  Status = "mastered"  // Terminal
)

// Rank returns the lattice position of s, or -1 for unknown values.
func (s Status) Rank() int {
	switch s {
	case StatusLocked:
		return 0
	case StatusAvailable:
		return 1
	case StatusActive:
		return 2
	case StatusMastered:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether s is at or beyond other in the lattice.
func (s Status) AtLeast(other Status) bool {
	return s.Rank() >= other.Rank()
}

// Icon returns the display icon for a status.
func (s Status) Icon() string {
	switch s {
	case StatusLocked:
		return "🔒"
	case StatusAvailable:
		return "☆"
	case StatusActive:
		return "✦"
	case StatusMastered:
		return "★"
	default:
		return "?"
	}
}

// Label returns the display label for a status.
func (s Status) Label() string {
	switch s {
	case StatusLocked:
		return "Locked"
	case StatusAvailable:
		return "Available"
	case StatusActive:
		return "Active"
	case StatusMastered:
		return "Mastered"
	default:
		return "Unknown"
	}
}

// ParseStatus converts a stored string to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st.Rank() < 0 {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

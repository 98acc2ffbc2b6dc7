package domain

import "time"

// ChangeType classifies a change to a watched file.
type ChangeType int

// File change types.
const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

// String returns the string representation.
func (t ChangeType) String() string {
	switch t {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileChange is a single change observed in a watched directory.
type FileChange struct {
	// Type is what happened to the file.
	Type ChangeType

	// Path is the absolute or root-joined path of the file.
	Path string

	// ModTime is the file's modification time. Zero for deletions.
	ModTime time.Time
}

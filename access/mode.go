package access

// Mode is the scope of mutation an access window may legally perform.
// Modes are ordered: a larger mode subsumes the capabilities of a
// smaller one.
type Mode uint8

const (
	// ReadOnly permits reading component and resource values.
	ReadOnly Mode = iota
	// DataMut additionally permits mutating component and resource
	// values, but forbids structural changes and registering new types.
	DataMut
	// FullMut permits everything, including spawn, despawn and component
	// add/remove. It requires that no other access of any mode is
	// concurrently active against the same storage.
	FullMut
)

func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "read_only"
	case DataMut:
		return "data_mut"
	case FullMut:
		return "full_mut"
	}
	return "unknown"
}

// Merge returns the larger of the two modes. A system's mode is the merge
// over all of its parameters' required modes.
func Merge(a, b Mode) Mode {
	if b > a {
		return b
	}
	return a
}

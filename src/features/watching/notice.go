package watching

import "fmt"

// Kind tags a raw filesystem notice.
type Kind int

const (
	KindCreate Kind = iota
	KindWrite
	KindChmod
	KindRemove
	KindRename
	// KindNotice is an early warning that a write or remove is pending in
	// the debounce window.
	KindNotice
	// KindRescan reports that notices were lost and the tree should be rescanned.
	KindRescan
	KindError
)

var kindNames = [...]string{
	KindCreate: "create",
	KindWrite:  "write",
	KindChmod:  "chmod",
	KindRemove: "remove",
	KindRename: "rename",
	KindNotice: "notice",
	KindRescan: "rescan",
	KindError:  "error",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Notice is one debounced filesystem event.
type Notice struct {
	Kind Kind
	Path string
	// Dest is the rename destination, empty when unknown.
	Dest string
	// Err is set for KindError notices.
	Err error
}

// Target is a watched path.
type Target struct {
	Path      string
	Recursive bool
}

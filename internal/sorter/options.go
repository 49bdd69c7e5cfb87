package sorter

// Mode selects whether files are moved or copied into their buckets.
type Mode int

const (
	ModeCopy Mode = iota
	ModeMove
)

func (m Mode) String() string {
	if m == ModeMove {
		return "move"
	}
	return "copy"
}

// SymlinkPolicy controls how the walk treats symbolic links.
type SymlinkPolicy int

const (
	// SymlinkFollow descends into linked directories and relocates linked
	// files. Directory cycles are visited once.
	SymlinkFollow SymlinkPolicy = iota
	// SymlinkSkip ignores every symbolic link.
	SymlinkSkip
)

// Traversal tunes which entries discovery yields.
type Traversal struct {
	Symlinks      SymlinkPolicy
	IncludeHidden bool
	// SkipEmpty leaves zero-byte files in place and reports them as skipped.
	SkipEmpty bool
}

// Options configures a Processor.
type Options struct {
	Mode Mode
	// Verify compares size and digest after every copy.
	Verify    bool
	Traversal Traversal
	// OnEvent, when set, receives every progress event in order.
	OnEvent EventSink
}

// DefaultOptions copies without verification, follows symlinks, and includes
// hidden and empty files.
func DefaultOptions() Options {
	return Options{
		Mode: ModeCopy,
		Traversal: Traversal{
			Symlinks:      SymlinkFollow,
			IncludeHidden: true,
		},
	}
}

package models

// SourceTree is a read-only listing of the scannable files under Root.
// Files are forward-slash paths relative to Root, sorted.
type SourceTree struct {
	Root  string
	Files []string
}

// RawReference is one module string found in a file. Offset is the byte
// position of the module string inside the file and identifies the match.
type RawReference struct {
	File   string
	Module string
	Offset int
}

package snapshot

import "encoding/json"

// Database is a content-addressed snapshot of a directory tree: a single
// root entry, normally a directory. It is produced once by a build and
// is read-only afterwards; nothing mutates a database after construction
// completes.
type Database struct {
	root *Entry
}

// New returns an empty database whose root is an empty directory.
func New() *Database {
	return &Database{root: NewDirectory()}
}

// Root returns the root entry.
func (d *Database) Root() *Entry {
	return d.root
}

// Insert places entry at the slash-separated path relative to the root,
// creating intermediate directories on demand. Duplicate paths and
// descents through file entries panic; the builder's walker guarantees
// neither occurs.
func (d *Database) Insert(path string, entry *Entry) {
	d.root.insert(path, entry)
}

// Lookup resolves a slash-separated path relative to the root.
func (d *Database) Lookup(path string) (*Entry, bool) {
	return d.root.lookup(path)
}

// Equal reports deep structural equality of two databases.
func (d *Database) Equal(other *Database) bool {
	return d.root.Equal(other.root)
}

// Totals returns the number of files in the database and the sum of
// their recorded sizes.
func (d *Database) Totals() (files uint64, bytes uint64) {
	return d.root.Totals()
}

// MarshalJSON encodes the database as its root entry.
func (d *Database) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.root)
}

// UnmarshalJSON decodes a database from its root entry.
func (d *Database) UnmarshalJSON(data []byte) error {
	root := &Entry{}
	if err := json.Unmarshal(data, root); err != nil {
		return err
	}
	d.root = root
	return nil
}

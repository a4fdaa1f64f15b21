package badger

import (
	"encoding/binary"

	"github.com/poiesic/wordhoard/core"
)

// Key prefixes for different data types
const (
	entryPrefix     = "dicent"
	entryIDPrefix   = "dicid"
	entryFormPrefix = "dicform"
)

// makeEntryPartitionPrefix returns the prefix shared by all primary keys in a partition.
// Format: prefix:partition:
func makeEntryPartitionPrefix(partition string) []byte {
	buf := make([]byte, 0, len(entryPrefix)+len(partition)+2)
	buf = append(buf, entryPrefix...)
	buf = append(buf, ':')
	buf = append(buf, partition...)
	return append(buf, ':')
}

// makeEntryKey generates the primary key for an entry.
// Format: prefix:partition:id (id is BigEndian so keys sort by id)
func makeEntryKey(partition string, id core.ID) []byte {
	buf := makeEntryPartitionPrefix(partition)
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makeEntryIDKey generates the id index key; its value is the partition name.
// Format: prefix:id
func makeEntryIDKey(id core.ID) []byte {
	buf := make([]byte, 0, len(entryIDPrefix)+9)
	buf = append(buf, entryIDPrefix...)
	buf = append(buf, ':')
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makePartialEntryFormKey generates the prefix used to scan homonyms.
// Format: prefix:partition NUL form NUL
func makePartialEntryFormKey(partition, form string) []byte {
	buf := make([]byte, 0, len(entryFormPrefix)+len(partition)+len(form)+3)
	buf = append(buf, entryFormPrefix...)
	buf = append(buf, ':')
	buf = append(buf, partition...)
	buf = append(buf, 0)
	buf = append(buf, form...)
	return append(buf, 0)
}

// makeEntryFormKey generates the form index key for an entry.
// Format: prefix:partition NUL form NUL id
func makeEntryFormKey(partition, form string, id core.ID) []byte {
	return binary.BigEndian.AppendUint64(makePartialEntryFormKey(partition, form), uint64(id))
}

// idFromKeySuffix extracts the trailing BigEndian id from a composite key.
func idFromKeySuffix(key []byte) core.ID {
	if len(key) < 8 {
		return 0
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

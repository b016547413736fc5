/*
Package catalog holds the donor catalog: records, contributor type
descriptors and the immutable in-memory store the search engine reads.

The store is built once by the loader and never mutated afterwards; the
engine only borrows it, so no locking is needed on the read path.
*/
package catalog

// Record is one catalog entry. Code is the unique key.
type Record struct {
	Name     string
	Code     string
	TypeCode string
	// Type is the resolved descriptor, UnknownType when unresolved.
	Type ContributorType
}

// Store is an immutable, ordered snapshot of the donor catalog.
type Store struct {
	records []Record
	types   *TypeSet
}

// NewStore builds a store from already-resolved records. Use the loader
// for file-backed catalogs; this constructor exists for tests and for
// callers that assemble records in memory.
func NewStore(records []Record, types *TypeSet) *Store {
	if types == nil {
		types = NewTypeSet()
	}
	resolved := make([]Record, len(records))
	copy(resolved, records)
	for i := range resolved {
		if resolved[i].Type.Code == "" {
			resolved[i].Type, _ = types.Resolve(resolved[i].TypeCode)
		}
	}
	return &Store{records: resolved, types: types}
}

// All returns the full ordered record set. Callers must not modify it.
func (s *Store) All() []Record {
	return s.records
}

// Types returns the contributor type table backing this store.
func (s *Store) Types() *TypeSet {
	return s.types
}

// Len returns the number of records in the catalog.
func (s *Store) Len() int {
	return len(s.records)
}

package storage

import (
	"bytes"
	"strings"
)

// Namespace is a view of a DB limited to keys under a fixed prefix. Several
// namespaces can share one database without seeing each other's keys.
type Namespace struct {
	db     DB
	prefix []byte
}

// NewNamespace returns the view of db under prefix.
func NewNamespace(db DB, prefix string) *Namespace {
	return &Namespace{db: db, prefix: []byte(prefix)}
}

func (n *Namespace) key(k string) []byte {
	return append(bytes.Clone(n.prefix), k...)
}

// Get returns the value at k, or ErrNotFound.
func (n *Namespace) Get(k string) ([]byte, error) { return n.db.Get(n.key(k)) }

// Put stores value at k.
func (n *Namespace) Put(k string, value []byte) error { return n.db.Put(n.key(k), value) }

// Delete removes k. Deleting a missing key is not an error.
func (n *Namespace) Delete(k string) error { return n.db.Delete(n.key(k)) }

// Has reports whether k exists.
func (n *Namespace) Has(k string) (bool, error) { return n.db.Has(n.key(k)) }

// Keys lists the keys under sub, in order, with the namespace prefix removed.
func (n *Namespace) Keys(sub string) ([]string, error) {
	var keys []string
	err := n.db.ForEach(n.key(sub), func(key, _ []byte) error {
		keys = append(keys, strings.TrimPrefix(string(key), string(n.prefix)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Clear deletes every key in the namespace and leaves the rest of the DB alone.
func (n *Namespace) Clear() error {
	keys, err := n.Keys("")
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := n.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

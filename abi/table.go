package abi

import (
	"sync"

	"github.com/joshuapare/nrtkit/meminfo"
)

// Handle identifies a record across the guest boundary. Zero is never issued.
type Handle uint64

// Table maps handles to live records. A final release destroys the record
// and forgets its handle under one write lock, so lookups never observe a
// destroyed record.
type Table struct {
	mu   sync.RWMutex
	next Handle
	recs map[Handle]*meminfo.Record
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{recs: make(map[Handle]*meminfo.Record)}
}

// Put registers r and returns its handle.
func (t *Table) Put(r *meminfo.Record) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.recs[t.next] = r
	return t.next
}

// Get returns the record for h. The record is only guaranteed live while the
// caller holds a reference; use Do to operate on it without one.
func (t *Table) Get(h Handle) (*meminfo.Record, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.recs[h]
	if !ok {
		return nil, ErrBadHandle
	}
	return r, nil
}

// Do calls fn with the record for h while no release through the table can
// destroy it.
func (t *Table) Do(h Handle, fn func(r *meminfo.Record) error) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.recs[h]
	if !ok {
		return ErrBadHandle
	}
	return fn(r)
}

// Release drops one reference through h and forgets h once the record is
// destroyed.
func (t *Table) Release(h Handle) (destroyed bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.recs[h]
	if !ok {
		return false, ErrBadHandle
	}
	if !r.Release() {
		return false, nil
	}
	delete(t.recs, h)
	return true, nil
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.recs)
}

package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/unichan/errors"
)

///////////////////////////////////////////////////////
// From Items to Iterator

// btreeIter walks a snapshot of the cached items in a range.
// The snapshot is taken on creation so writes to the cache while
// iterating never invalidate the cursor.
type btreeIter struct {
	items []keyer
	idx   int
}

// source marks where the current item comes from
type source int32

const (
	us source = iota
	parent
	both
	none
)

func ascendBtree(bt *btree.BTree, start, end []byte) *btreeIter {
	iter := &btreeIter{}
	collect := func(item btree.Item) bool {
		iter.items = append(iter.items, item.(keyer))
		return true
	}

	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return iter
}

func descendBtree(bt *btree.BTree, start, end []byte) *btreeIter {
	iter := &btreeIter{}
	collect := func(item btree.Item) bool {
		iter.items = append(iter.items, item.(keyer))
		return true
	}

	switch {
	case start == nil && end == nil:
		bt.Descend(collect)
	case start == nil:
		bt.DescendLessOrEqual(bkeyLess{end}, collect)
	case end == nil:
		bt.DescendGreaterThan(bkeyLess{start}, collect)
	default:
		bt.DescendRange(bkeyLess{end}, bkeyLess{start}, collect)
	}
	return iter
}

func (b *btreeIter) next() {
	b.idx++
}

func (b *btreeIter) close() {
	b.items = nil
}

// get requires this is valid, gets what we are pointing at
func (b *btreeIter) get() keyer {
	return b.items[b.idx]
}

func (b *btreeIter) valid() bool {
	return b.idx < len(b.items)
}

// itemIter merges the cached items with the iterator of the backing
// store. Cached entries shadow the parent, deleted entries hide it.
type itemIter struct {
	wrap *btreeIter
	// if we are iterating in a cache-wrap (and who isn't),
	// we need to combine this iterator with the parent
	parent  Iterator
	reverse bool
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(wrap *btreeIter, parent Iterator, reverse bool) (*itemIter, error) {
	iter := &itemIter{
		wrap:    wrap,
		parent:  parent,
		reverse: reverse,
	}
	if err := iter.skipAllDeleted(); err != nil {
		iter.Close()
		return nil, err
	}
	return iter, nil
}

// Valid implements Iterator and returns true iff it can be read
func (i *itemIter) Valid() bool {
	return i.wrap.valid() || i.parentValid()
}

// Next moves the iterator to the next sequential key in the database, as
// defined by order of iteration.
func (i *itemIter) Next() error {
	// advance either us, parent, or both
	switch i.firstKey() {
	case us:
		i.wrap.next()
	case both:
		i.wrap.next()
		fallthrough
	case parent:
		if err := i.parent.Next(); err != nil {
			return err
		}
	default:
		return errors.Wrap(errors.ErrDatabase, "advanced past the end")
	}

	// keep advancing over all deleted entries
	return i.skipAllDeleted()
}

// Key returns the key of the cursor.
func (i *itemIter) Key() (key []byte) {
	switch i.firstKey() {
	case us, both:
		return i.wrap.get().Key()
	case parent:
		return i.parent.Key()
	default: //none
		panic("Advanced past the end!")
	}
}

// Value returns the value of the cursor.
func (i *itemIter) Value() (value []byte) {
	switch i.firstKey() {
	case us, both:
		return i.wrap.get().(setItem).value
	case parent:
		return i.parent.Value()
	default: // none
		panic("Advanced past the end!")
	}
}

// Close releases the Iterator.
func (i *itemIter) Close() {
	if i.parent != nil {
		i.parent.Close()
	}
	i.wrap.close()
}

// skipAllDeleted loops and skips any number of deleted items
func (i *itemIter) skipAllDeleted() error {
	for {
		more, err := i.skipDeleted()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// skipDeleted jumps over all elements we can safely fast forward
// return true if skipped, so we can skip again
func (i *itemIter) skipDeleted() (bool, error) {
	src := i.firstKey()
	if src != us && src != both {
		return false, nil
	}
	if _, ok := i.wrap.get().(deletedItem); !ok {
		return false, nil
	}
	i.wrap.next()
	// if parent had the same key, advance parent as well
	if src == both {
		if err := i.parent.Next(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// firstKey selects the iterator that comes first in iteration order
func (i *itemIter) firstKey() source {
	// if only one or none is valid, it is clear which to use
	if !i.parentValid() {
		if !i.wrap.valid() {
			return none
		}
		return us
	} else if !i.wrap.valid() {
		return parent
	}

	cmp := bytes.Compare(i.parent.Key(), i.wrap.get().Key())
	if i.reverse {
		cmp = -cmp
	}
	switch {
	case cmp < 0:
		return parent
	case cmp > 0:
		return us
	default:
		return both
	}
}

// makes sure the parent is non-nil before checking if it is valid
func (i *itemIter) parentValid() bool {
	return (i.parent != nil) && i.parent.Valid()
}

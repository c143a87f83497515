package orm

import "github.com/iov-one/unichan"

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(itr unichan.Iterator) ([]unichan.Model, error) {
	defer itr.Close()

	var res []unichan.Model
	for itr.Valid() {
		res = append(res, unichan.Pair(itr.Key(), itr.Value()))
		if err := itr.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// prefixRange turns a prefix into a (start, end) range. The end is the
// smallest key greater than any key with the prefix, nil if unbounded.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if prefix == nil {
		return nil, nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 255 {
			end[i]++
			return prefix, end
		}
		end[i] = 0
	}
	return prefix, nil
}

func queryPrefix(db unichan.ReadOnlyKVStore, prefix []byte) ([]unichan.Model, error) {
	start, end := prefixRange(prefix)
	itr, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(itr)
}

// Package collection implements the ordered-by-id behavior shared by the
// file, target and message collections: binary lookup over id-ascending
// slices and the successor rule applied after a deletion.
package collection

// Item is an element of an id-ordered collection.
type Item interface {
	ItemID() int64
}

// Search performs binary search over items sorted ascending by id and
// returns the position of the item whose id equals id. Ids are unique, so
// ties cannot occur. The bool result is false when no item matches.
func Search[T Item](items []T, id int64) (int, T, bool) {
	low, high := 0, len(items)-1
	for low <= high {
		mid := low + (high-low)/2
		switch {
		case items[mid].ItemID() < id:
			low = mid + 1
		case items[mid].ItemID() > id:
			high = mid - 1
		default:
			return mid, items[mid], true
		}
	}
	var zero T
	return -1, zero, false
}

// Successor picks the item the client should navigate to after the item at
// pos is deleted from a collection of size n: the previous item when there
// is one, otherwise the next. For a single-item collection there is nothing
// left to show and ok is false.
func Successor(n, pos int) (int, bool) {
	if n <= 1 {
		return -1, false
	}
	if pos > 0 {
		return pos - 1, true
	}
	return pos + 1, true
}

package util

// ListFilter describes a narrowed collection: the conditions applied to it,
// its ordering and an optional cap on the number of leading rows.
type ListFilter struct {
	Filters []QueryFilter
	Order   []OrderClause
	// Limit is nil when the collection has not been sliced
	Limit *int
}

// WithFilter returns a copy of the filter with one more condition appended.
func (f ListFilter) WithFilter(filter QueryFilter) ListFilter {
	filters := make([]QueryFilter, 0, len(f.Filters)+1)
	filters = append(filters, f.Filters...)
	f.Filters = append(filters, filter)
	return f
}

// WithLimit returns a copy capped to the first n rows. Slicing an already
// sliced collection keeps the smaller bound; negative bounds yield nothing.
func (f ListFilter) WithLimit(n int) ListFilter {
	if n < 0 {
		n = 0
	}
	if f.Limit != nil && *f.Limit < n {
		n = *f.Limit
	}
	f.Limit = &n
	return f
}

// Window resolves an offset/limit request against the slice bound. A negative
// limit means "everything from offset". ok is false when the window is empty.
func (f ListFilter) Window(offset, limit int) (int, int, bool) {
	if offset < 0 {
		offset = 0
	}
	if f.Limit == nil {
		return offset, limit, limit != 0
	}

	remaining := *f.Limit - offset
	if remaining <= 0 {
		return offset, 0, false
	}
	if limit < 0 || limit > remaining {
		limit = remaining
	}
	return offset, limit, limit > 0
}

package utils

// SliceSelect maps every element of a slice through f, preserving order.
func SliceSelect[T any, K any](x []T, f func(x T) K) []K {
	r := make([]K, len(x))
	for i, element := range x {
		r[i] = f(element)
	}
	return r
}

// SliceWhere returns the elements of a slice for which f holds, preserving order. The result is never nil.
func SliceWhere[T any](x []T, f func(x T) bool) []T {
	r := make([]T, 0)
	for _, element := range x {
		if f(element) {
			r = append(r, element)
		}
	}
	return r
}

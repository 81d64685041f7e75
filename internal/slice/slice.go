package slice

// Map applies f to each element of list and returns the results in order. A
// nil f yields an empty slice.
func Map[T, R any](list []T, f func(t T) R) []R {
	if f == nil {
		return make([]R, 0)
	}

	output := make([]R, 0, len(list))

	for idx := range list {
		output = append(output, f(list[idx]))
	}

	return output
}

// Filter returns the elements of arr accepted by filterFn. A nil filterFn
// accepts everything.
func Filter[T any](arr []T, filterFn func(v T) bool) []T {
	output := make([]T, 0, len(arr))
	for _, v := range arr {
		if filterFn == nil || filterFn(v) {
			output = append(output, v)
		}
	}

	return output
}

// Find returns the first element of list satisfying f.
func Find[T any](list []T, f func(t T) bool) (T, bool) {
	var found T
	for idx := range list {
		if ok := f(list[idx]); ok {
			return list[idx], true
		}
	}

	return found, false
}

// UniqueBy returns the distinct keys of list in first appearance order.
func UniqueBy[T any, K comparable](list []T, key func(t T) K) []K {
	seen := make(map[K]struct{}, len(list))
	output := make([]K, 0)

	for idx := range list {
		k := key(list[idx])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		output = append(output, k)
	}

	return output
}

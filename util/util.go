package util

// TransformSlice applies the converter to each element in the input slice and returns a new slice.
func TransformSlice[T any, R any](in []T, converter func(T) R) []R {
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = converter(v)
	}
	return out
}

// FilterSlice returns the elements of in for which keep returns true, preserving order.
func FilterSlice[T any](in []T, keep func(T) bool) []T {
	var out []T
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// FlatMapSlice applies the converter to each element and concatenates the results in order.
func FlatMapSlice[T any, R any](in []T, converter func(T) []R) []R {
	var out []R
	for _, v := range in {
		out = append(out, converter(v)...)
	}
	return out
}

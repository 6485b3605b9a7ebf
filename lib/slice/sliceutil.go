// Package sliceutil holds generic slice conversions.
package sliceutil

func Map[From, To any](v []From, f func(From) To) []To {
	out := make([]To, len(v))
	for i, e := range v {
		out[i] = f(e)
	}
	return out
}

// TryMap is Map for conversions that can fail. It stops at the first
// error.
func TryMap[From, To any](v []From, f func(From) (To, error)) ([]To, error) {
	out := make([]To, 0, len(v))
	for _, e := range v {
		t, err := f(e)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

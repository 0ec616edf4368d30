package shallow

import "reflect"

// Copy returns a one-level copy of v.
//
// Maps and slices are copied one level deep: the result is a new map or
// slice of the same type holding the same elements. Every other kind,
// including pointers, is returned unchanged, so pointer identity and nested
// structure are preserved.
func Copy(v any) any {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()

	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()

	default:
		return v
	}
}

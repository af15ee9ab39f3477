package value

// Walk traverses v depth-first in document order and invokes fn once per
// leaf. Scalars and nulls are leaves; objects recurse per key and arrays
// per element, all elements sharing one "[]" path segment. When maxDepth
// is positive, containers nested maxDepth levels below the root are not
// entered and are reported as a single opaque observation instead, so a
// pathological or adversarial nesting depth can never drive unbounded
// descent. maxDepth <= 0 means unlimited.
func Walk(v Value, maxDepth int, fn func(Path, Value)) {
	walk(Root, v, 0, maxDepth, fn)
}

func walk(p Path, v Value, depth, maxDepth int, fn func(Path, Value)) {
	switch v.Kind() {
	case KindObject:
		if maxDepth > 0 && depth >= maxDepth {
			fn(p, v)
			return
		}
		for el := v.Object().Front(); el != nil; el = el.Next() {
			walk(p.Child(el.Key), el.Value, depth+1, maxDepth, fn)
		}
	case KindArray:
		if maxDepth > 0 && depth >= maxDepth {
			fn(p, v)
			return
		}
		for _, item := range v.Items() {
			walk(p.Elem(), item, depth+1, maxDepth, fn)
		}
	default:
		fn(p, v)
	}
}

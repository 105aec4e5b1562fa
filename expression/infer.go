package expression

// InferSets rewrites lists whose elements are all numbers, all strings,
// or all binaries into the matching set type. Nested lists and maps are
// rewritten recursively. Anything else comes back unchanged.
//
// This mirrors the legacy shorthand where ["a", "b"] stood for a string
// set before the << … >> syntax existed.
func InferSets(v Value) Value {
	switch tv := v.(type) {
	case *List:
		return inferListSet(tv)
	case *Map:
		for i := range tv.Entries {
			tv.Entries[i].Value = InferSets(tv.Entries[i].Value)
		}

		return tv
	}

	return v
}

func inferListSet(list *List) Value {
	if len(list.Elements) == 0 {
		return list
	}

	kind := list.Elements[0].Kind()
	if !kind.Scalar() {
		return inferListElements(list)
	}

	for _, e := range list.Elements {
		if e.Kind() != kind {
			return inferListElements(list)
		}
	}

	switch kind {
	case KindNumber:
		ns := &NumberSet{}

		for _, e := range list.Elements {
			ns.Values = appendUniqueString(ns.Values, e.(*Number).Value)
		}

		return ns
	case KindString:
		ss := &StringSet{}

		for _, e := range list.Elements {
			ss.Values = appendUniqueString(ss.Values, e.(*String).Value)
		}

		return ss
	}

	bs := &BinarySet{}

	for _, e := range list.Elements {
		bs.Values = appendUniqueBytes(bs.Values, e.(*Binary).Value)
	}

	return bs
}

func inferListElements(list *List) Value {
	for i := range list.Elements {
		list.Elements[i] = InferSets(list.Elements[i])
	}

	return list
}

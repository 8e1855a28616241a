package coltype

// Equal reports structural equality. UDTs compare by keyspace, name and
// fields, not by definition pointer.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case *Native:
		y, ok := b.(*Native)
		return ok && x.kind == y.kind
	case *Collection:
		y, ok := b.(*Collection)
		if !ok || x.frozen != y.frozen || x.shape != y.shape {
			return false
		}
		if x.shape == Map {
			return Equal(x.key, y.key) && Equal(x.value, y.value)
		}
		return Equal(x.elem, y.elem)
	case *Vector:
		y, ok := b.(*Vector)
		return ok && x.dims == y.dims && Equal(x.elem, y.elem)
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || len(x.elems) != len(y.elems) {
			return false
		}
		for i := range x.elems {
			if !Equal(x.elems[i], y.elems[i]) {
				return false
			}
		}
		return true
	case *UDT:
		y, ok := b.(*UDT)
		return ok && x.frozen == y.frozen && equalDef(x.def, y.def)
	}
	return false
}

func equalDef(a, b *UDTDef) bool {
	if a == b {
		return true
	}
	if a.name != b.name || a.keyspace != b.keyspace || len(a.fields) != len(b.fields) {
		return false
	}
	for i := range a.fields {
		if a.fields[i].Name != b.fields[i].Name || !Equal(a.fields[i].Type, b.fields[i].Type) {
			return false
		}
	}
	return true
}

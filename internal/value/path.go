package value

// Path is the canonical dotted address of a field. Object keys join with
// ".", array descent appends "[]" so that every element of an array maps
// onto one path regardless of index: "user.tags[]", "items[].id". The
// root value itself is addressed as "$"; children of the root carry no
// prefix.
type Path string

// Root addresses the record itself.
const Root Path = "$"

// Child extends the path with an object key.
func (p Path) Child(key string) Path {
	if p == Root {
		return Path(key)
	}
	return p + "." + Path(key)
}

// Elem extends the path into array elements.
func (p Path) Elem() Path {
	if p == Root {
		return "[]"
	}
	return p + "[]"
}

// IsRoot reports whether the path addresses the record itself.
func (p Path) IsRoot() bool { return p == Root }

func (p Path) String() string { return string(p) }

package cassandra

import (
	"fmt"
	"strconv"
)

// Address selects parameter slots either by zero-based position or by name.
// A name selects every slot carrying it.
type Address struct {
	index int
	name  string
	named bool
}

// At addresses the slot at position idx.
func At(idx int) Address {
	return Address{index: idx}
}

// Named addresses all slots named name. Unquoted names match
// case-insensitively; a double-quoted name matches exactly.
func Named(name string) Address {
	return Address{name: name, named: true}
}

// Index returns the position and true for a positional address.
func (a Address) Index() (int, bool) {
	return a.index, !a.named
}

// Name returns the name and true for a name address.
func (a Address) Name() (string, bool) {
	return a.name, a.named
}

func (a Address) String() string {
	if a.named {
		return fmt.Sprintf("name %q", a.name)
	}
	return "index " + strconv.Itoa(a.index)
}

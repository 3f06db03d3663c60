package cassandra

import "github.com/cassandra-go/cassandra/internal/mapping"

// CustomPayload is a set of named byte values sent alongside a request and
// interpreted by server-side query handlers.
type CustomPayload struct {
	items map[string][]byte
}

func NewCustomPayload() *CustomPayload {
	return &CustomPayload{items: map[string][]byte{}}
}

// Set stores a copy of value under name, replacing any previous value.
func (p *CustomPayload) Set(name string, value []byte) error {
	if !mapping.ValidText(name) {
		return codeError("custom payload set", mapping.CodeInvalidText, ErrConstruction)
	}
	p.items[name] = append([]byte{}, value...)
	return nil
}

func (p *CustomPayload) Remove(name string) {
	delete(p.items, name)
}

func (p *CustomPayload) Len() int {
	return len(p.items)
}

package fmodel

// Identifier identifies the concept a command, event or state belongs to,
// for example an order id. Repositories use it to partition streams.
type Identifier interface {
	Identifier() string
}

// IdentifierOf returns v's identifier, or "" when v does not implement Identifier.
func IdentifierOf[T any](v T) string {
	if id, ok := any(v).(Identifier); ok {
		return id.Identifier()
	}
	return ""
}

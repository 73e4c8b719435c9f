package ports

// ControlQueue hands inbound control messages from the bus goroutine to the
// dispatcher.
type ControlQueue interface {
	Enqueue(m Message) bool
	DequeueBatch(max int) []Message
	Len() int
	Ready() <-chan struct{}
}

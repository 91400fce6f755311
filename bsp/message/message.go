/*
	Message queues used by vertices to exchange data between supersteps.
*/
package message

// Message is implemented by values that can be exchanged between vertices.
type Message interface {
	// Type returns the type of this Message.
	Type() string
}

// Queue is implemented by types that can buffer the messages addressed to a
// single vertex.
type Queue interface {
	// Close releases any resources associated with the queue.
	Close() error

	// Enqueue appends msg to the queue. It is safe to call Enqueue from
	// concurrent goroutines.
	Enqueue(msg Message) error

	// PendingMessages reports whether the queue has undelivered messages.
	PendingMessages() bool

	// DiscardMessages drops all pending messages in the queue.
	DiscardMessages() error

	// Messages returns an iterator over the pending messages.
	Messages() Iterator
}

// Iterator is implemented by types that can iterate a sequence of messages.
type Iterator interface {
	// Next advances the iterator. It returns false when no more messages
	// are available or an error occurred.
	Next() bool

	// Message returns the message the iterator currently points to.
	Message() Message

	// Error returns the last error encountered by the iterator.
	Error() error
}

// QueueFactory is a function that can create new Queue instances.
type QueueFactory func() Queue

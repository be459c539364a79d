package interfaces

// ConsumerHandler receives one mail event payload per call. A returned error
// is logged by the consumer, which then moves on to the next event.
type ConsumerHandler interface {
	HandleMessage(message string) error
}

// ProducerHandler publishes a mail event, keyed by its kind so all events of
// one kind land on the same partition.
type ProducerHandler interface {
	PublishMessage(key, value []byte) error
}

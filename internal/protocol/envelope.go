package protocol

// Envelope is the unit passed through the transport. CorrelationID and
// ReplyTo are set only on the registration round trip; ClientID identifies
// the sender on a client's private queue.
type Envelope struct {
	CorrelationID string
	ReplyTo       string // queue name for the correlated reply
	ClientID      string
	Msg           Message
}

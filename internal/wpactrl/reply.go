package wpactrl

// Reply is the outcome of one command exchange.
type Reply struct {
	// Text holds at most the requested capacity of reply bytes.
	Text string
	// Len is len(Text).
	Len int
	// Truncated means the daemon replied with more than fit. The command still
	// succeeded; Text is a prefix of the full reply.
	Truncated bool
}

// fillReply copies data into buf without writing past len(buf).
// cut reports that the transport already dropped the tail of data.
func fillReply(buf, data []byte, cut bool) (int, bool) {
	n := copy(buf, data)
	return n, cut || len(data) > len(buf)
}

package internal

// Transaction is a fully assembled XRP payment. It is constructed once per
// send attempt, after the fee and sequence lookups complete, and never
// mutated afterwards.
type Transaction struct {
	// Account is the classic address of the sending account.
	Account string
	// Destination is the classic address of the receiving account.
	Destination string
	// DestinationTag carries the tag embedded in an X-address destination,
	// if there was one.
	DestinationTag *uint32
	// Amount is the payment amount in drops.
	Amount Drops
	// Fee is the fee to pay, in drops, taken from the network's current
	// minimum at assembly time.
	Fee Drops
	// Sequence is the sender's next account sequence number.
	Sequence uint32
	// Memos are optional free-form attachments.
	Memos []Memo
}

// Memo is an optional transaction attachment. All fields are hex-encoded on
// the wire; the client passes them through untouched.
type Memo struct {
	Data   string `json:"MemoData,omitempty"`
	Format string `json:"MemoFormat,omitempty"`
	Type   string `json:"MemoType,omitempty"`
}

// SignedTransaction is the opaque artifact a Signer produces. The client
// passes it to submission unmodified.
type SignedTransaction struct {
	// Blob is the hex-encoded signed transaction.
	Blob string
	// Hash identifies the transaction on the network.
	Hash string
}

package probe

// SenderIdentity carries the originating connection's relay metadata. It is
// only constructed when all three fields were resolvable; a nil identity
// means no XCLIENT parameters are sent to the helper.
type SenderIdentity struct {
	// IP is the client IP address of the original connection.
	IP string

	// Helo is the HELO/EHLO hostname the client presented.
	Helo string

	// RDNS is the reverse-DNS name of the client IP.
	RDNS string
}

// Request describes one delivery attempt. It is immutable for the lifetime
// of the attempt; the probe only reads it.
type Request struct {
	// Recipient is the destination mailbox.
	Recipient string

	// RelayServer and RelayPort identify the relay to probe through.
	RelayServer string
	RelayPort   int

	// BodyPath is the path to a file holding the full message to transmit.
	// The file is owned by the caller; the probe passes the path through.
	BodyPath string

	// Sender is the original connection identity, or nil if unresolvable.
	Sender *SenderIdentity

	// EnvelopeFrom is the bounce address to present. When empty,
	// FromHeaderAddress is used instead.
	EnvelopeFrom string

	// FromHeaderAddress is the address parsed from the From header, used
	// as the sender fallback.
	FromHeaderAddress string

	// FromHeaderRaw is the verbatim From header to re-present, including
	// any embedded whitespace.
	FromHeaderRaw string

	// ExtraOptions are admin-supplied helper arguments, validated at
	// configuration time to the restricted character set.
	ExtraOptions []string
}

// SenderAddress returns the bounce address the attempt will present:
// EnvelopeFrom when non-empty, else FromHeaderAddress.
func (r Request) SenderAddress() string {
	if r.EnvelopeFrom != "" {
		return r.EnvelopeFrom
	}
	return r.FromHeaderAddress
}

// ClientIP returns the originating client IP, or "" without an identity.
func (r Request) ClientIP() string {
	if r.Sender == nil {
		return ""
	}
	return r.Sender.IP
}

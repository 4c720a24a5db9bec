package probe

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrNoSenderAddress is returned by BuildArgs when a request carries neither
// an envelope sender nor a From-header address. That is a caller bug, not an
// attempt failure.
var ErrNoSenderAddress = errors.New("request has no envelope sender and no From header address")

// BuildArgs produces the helper's argument vector from a request. It is a
// pure function: no I/O, deterministic for a given request. Composition
// order is fixed so that later arguments win if the helper applies last-wins
// semantics: base flags, admin extras, XCLIENT/EHLO identity, sender
// override, From-header override.
func BuildArgs(req Request) ([]string, error) {
	if req.Recipient == "" {
		return nil, errors.New("request has no recipient")
	}
	if req.RelayServer == "" {
		return nil, errors.New("request has no relay server")
	}
	if req.BodyPath == "" {
		return nil, errors.New("request has no message body path")
	}
	from := req.SenderAddress()
	if from == "" {
		return nil, ErrNoSenderAddress
	}

	args := []string{
		"-n",
		"--to", req.Recipient,
		"--server", net.JoinHostPort(req.RelayServer, strconv.Itoa(req.RelayPort)),
		"--data", req.BodyPath,
	}

	args = append(args, req.ExtraOptions...)

	if req.Sender != nil {
		args = append(args,
			"--xclient", fmt.Sprintf("name=%s ADDR=%s", req.Sender.RDNS, req.Sender.IP),
			"--ehlo", req.Sender.Helo,
		)
	}

	args = append(args, "--from", from)

	if req.FromHeaderRaw != "" {
		// The raw header travels as a single argv element; embedded
		// whitespace must survive intact.
		args = append(args, "--header", req.FromHeaderRaw)
	}

	return args, nil
}

package probe

import (
	"errors"
	"strings"
	"testing"
)

func baseRequest() Request {
	return Request{
		Recipient:    "rcpt@example.com",
		RelayServer:  "relay.example.com",
		RelayPort:    25,
		BodyPath:     "/tmp/message.eml",
		EnvelopeFrom: "sender@example.com",
	}
}

func TestBuildArgsBase(t *testing.T) {
	args, err := BuildArgs(baseRequest())
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}

	want := []string{
		"-n",
		"--to", "rcpt@example.com",
		"--server", "relay.example.com:25",
		"--data", "/tmp/message.eml",
		"--from", "sender@example.com",
	}
	if len(args) != len(want) {
		t.Fatalf("BuildArgs() = %v, want %v", args, want)
	}
	for i := range args {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestBuildArgsNoIdentityNoXclient(t *testing.T) {
	req := baseRequest()
	req.Sender = nil

	args, err := BuildArgs(req)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}

	for _, a := range args {
		if a == "--xclient" || a == "--ehlo" {
			t.Errorf("unexpected identity argument %q with nil sender", a)
		}
	}
}

func TestBuildArgsIdentity(t *testing.T) {
	req := baseRequest()
	req.Sender = &SenderIdentity{
		IP:   "192.0.2.7",
		Helo: "mail.client.example",
		RDNS: "client.example",
	}

	args, err := BuildArgs(req)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}

	joined := strings.Join(args, "\x00")
	if !strings.Contains(joined, "--xclient\x00name=client.example ADDR=192.0.2.7") {
		t.Errorf("missing xclient parameter in %v", args)
	}
	if !strings.Contains(joined, "--ehlo\x00mail.client.example") {
		t.Errorf("missing ehlo override in %v", args)
	}

	// The EHLO override follows the XCLIENT parameter.
	var xclientIdx, ehloIdx int
	for i, a := range args {
		switch a {
		case "--xclient":
			xclientIdx = i
		case "--ehlo":
			ehloIdx = i
		}
	}
	if ehloIdx < xclientIdx {
		t.Errorf("ehlo override at %d precedes xclient at %d", ehloIdx, xclientIdx)
	}
}

func TestBuildArgsSenderPreference(t *testing.T) {
	tests := []struct {
		name          string
		envelopeFrom  string
		headerAddress string
		wantFrom      string
		wantErr       bool
	}{
		{"envelope preferred", "env@example.com", "hdr@example.com", "env@example.com", false},
		{"envelope only", "env@example.com", "", "env@example.com", false},
		{"header fallback", "", "hdr@example.com", "hdr@example.com", false},
		{"both empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			req.EnvelopeFrom = tt.envelopeFrom
			req.FromHeaderAddress = tt.headerAddress

			args, err := BuildArgs(req)
			if tt.wantErr {
				if !errors.Is(err, ErrNoSenderAddress) {
					t.Fatalf("BuildArgs() error = %v, want ErrNoSenderAddress", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildArgs() error = %v", err)
			}

			for i, a := range args {
				if a == "--from" {
					if args[i+1] != tt.wantFrom {
						t.Errorf("--from = %q, want %q", args[i+1], tt.wantFrom)
					}
					return
				}
			}
			t.Error("no --from argument emitted")
		})
	}
}

func TestBuildArgsRawHeaderSingleArgument(t *testing.T) {
	req := baseRequest()
	req.FromHeaderRaw = `From: "Display Name" <sender@example.com>`

	args, err := BuildArgs(req)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}

	// The raw header must arrive as one argv element, whitespace intact.
	found := false
	for i, a := range args {
		if a == "--header" {
			found = true
			if args[i+1] != req.FromHeaderRaw {
				t.Errorf("--header = %q, want %q", args[i+1], req.FromHeaderRaw)
			}
		}
	}
	if !found {
		t.Error("no --header argument emitted")
	}

	// And it must be the last override in the vector.
	if args[len(args)-1] != req.FromHeaderRaw {
		t.Errorf("raw header is not the final argument: %v", args)
	}
}

func TestBuildArgsExtraOptionsBeforeIdentity(t *testing.T) {
	req := baseRequest()
	req.ExtraOptions = []string{"--pipeline", "--tls-optional"}
	req.Sender = &SenderIdentity{IP: "192.0.2.7", Helo: "h", RDNS: "r"}

	args, err := BuildArgs(req)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}

	var pipelineIdx, xclientIdx int
	for i, a := range args {
		switch a {
		case "--pipeline":
			pipelineIdx = i
		case "--xclient":
			xclientIdx = i
		}
	}
	if pipelineIdx > xclientIdx {
		t.Errorf("extra options at %d come after identity at %d", pipelineIdx, xclientIdx)
	}
}

func TestBuildArgsMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
	}{
		{"no recipient", func(r *Request) { r.Recipient = "" }},
		{"no relay server", func(r *Request) { r.RelayServer = "" }},
		{"no body path", func(r *Request) { r.BodyPath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.modify(&req)
			if _, err := BuildArgs(req); err == nil {
				t.Error("BuildArgs() error = nil, want error")
			}
		})
	}
}

func TestBuildArgsIsDeterministic(t *testing.T) {
	req := baseRequest()
	req.ExtraOptions = []string{"--pipeline"}
	req.Sender = &SenderIdentity{IP: "192.0.2.7", Helo: "h", RDNS: "r"}
	req.FromHeaderRaw = "From: x <x@example.com>"

	first, err := BuildArgs(req)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	second, err := BuildArgs(req)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	if strings.Join(first, "\x00") != strings.Join(second, "\x00") {
		t.Errorf("BuildArgs() not deterministic:\n%v\n%v", first, second)
	}
}

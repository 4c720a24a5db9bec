package probe

import (
	"regexp"
	"strings"
)

// acceptedPattern matches a final SMTP accept: a 250 acknowledgment carrying
// a queue identifier of the form word-word-word.
var acceptedPattern = regexp.MustCompile(`(?i)250 OK id=\w+-\w+-\w+`)

// rejectedPattern matches a permanent failure and captures the explanatory
// text up to the end of the line.
var rejectedPattern = regexp.MustCompile(`550 ([^\n]*)`)

// inconclusiveRejections are 550 explanations that say nothing about the
// message's content or reputation. Matched case-sensitively, in order.
var inconclusiveRejections = []string{
	"relay not permitted",
	"has no A, AAAA, or MX DNS records",
	"no mailbox by that name is currently available",
}

// Classification is a verdict together with the evidence that produced it.
// Reason is free-form diagnostic text and is never parsed.
type Classification struct {
	Verdict Verdict
	Reason  string
}

// Classify maps a non-empty transcript to a verdict. The accept rule is
// checked before the reject rule; the first match anywhere in the
// transcript wins. A 550 whose explanation matches none of the
// inconclusive phrases counts as spam.
func Classify(transcript []string) Classification {
	blob := strings.Join(transcript, "\n")

	if m := acceptedPattern.FindString(blob); m != "" {
		return Classification{
			Verdict: VerdictNotSpam,
			Reason:  "relay accepted the message: " + m,
		}
	}

	if m := rejectedPattern.FindStringSubmatch(blob); m != nil {
		text := m[1]
		for _, phrase := range inconclusiveRejections {
			if strings.Contains(text, phrase) {
				return Classification{
					Verdict: VerdictNotSpam,
					Reason:  "rejection not content-based: " + text,
				}
			}
		}
		return Classification{
			Verdict: VerdictSpam,
			Reason:  "relay rejected the message: " + text,
		}
	}

	return Classification{
		Verdict: VerdictUnsure,
		Reason:  "no recognizable final response",
	}
}

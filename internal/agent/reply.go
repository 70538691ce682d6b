package agent

import "strings"

// ReplyKind discriminates the shape of a generator reply.
type ReplyKind int

const (
	// ReplyText is a plain text reply.
	ReplyText ReplyKind = iota

	// ReplyMessage is a structured message made of content parts.
	ReplyMessage
)

// Part is one content part of a structured reply.
type Part struct {
	Text string
}

// Reply is the generator's answer, either plain text or a structured
// message. Normalize renders both shapes as plain text.
type Reply struct {
	Kind  ReplyKind
	Text  string
	Parts []Part
}

// TextReply wraps plain text as a Reply.
func TextReply(text string) Reply {
	return Reply{Kind: ReplyText, Text: text}
}

// MessageReply wraps content parts as a Reply.
func MessageReply(parts ...Part) Reply {
	return Reply{Kind: ReplyMessage, Parts: parts}
}

// Normalize renders a reply as plain text. Structured messages
// concatenate their non-empty parts separated by newlines.
func Normalize(r Reply) string {
	switch r.Kind {
	case ReplyText:
		return r.Text
	case ReplyMessage:
		texts := make([]string, 0, len(r.Parts))
		for _, p := range r.Parts {
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		return strings.Join(texts, "\n")
	}
	return ""
}

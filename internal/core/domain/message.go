package domain

import (
	"encoding/json"
	"fmt"
)

// Visitor receives every leaf text fragment of a message.
type Visitor interface {
	Visit(text string)
}

// VisitorFunc adapts a plain function to Visitor.
type VisitorFunc func(text string)

func (f VisitorFunc) Visit(text string) { f(text) }

// Message is the stored content of a media message. Implementations are
// registered by kind so payloads can be decoded by their "type" field.
type Message interface {
	Kind() string
	// Sign calls v once per leaf text unit, in deterministic order.
	Sign(v Visitor)
}

const (
	KindText    = "text"
	KindDiscuss = "discuss"
)

// Text is a single text fragment.
type Text struct {
	Content string `json:"content"`
}

func (Text) Kind() string { return KindText }

func (t Text) Sign(v Visitor) { v.Visit(t.Content) }

// SpeakMessage is one utterance inside a discussion.
type SpeakMessage struct {
	Speaker string  `json:"speaker,omitempty"`
	Content Message `json:"content"`
}

func (s SpeakMessage) MarshalJSON() ([]byte, error) {
	content, err := EncodeMessage(s.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Speaker string          `json:"speaker,omitempty"`
		Content json.RawMessage `json:"content"`
	}{Speaker: s.Speaker, Content: content})
}

func (s *SpeakMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Speaker string          `json:"speaker"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("speak message: %v: %w", err, ErrValidation)
	}
	content, err := DecodeMessage(raw.Content)
	if err != nil {
		return err
	}
	s.Speaker = raw.Speaker
	s.Content = content
	return nil
}

// Discuss is an ordered conversation. Items keep insertion order.
type Discuss struct {
	Items []SpeakMessage `json:"items"`
}

func (Discuss) Kind() string { return KindDiscuss }

func (d Discuss) Sign(v Visitor) {
	for _, item := range d.Items {
		if item.Content != nil {
			item.Content.Sign(v)
		}
	}
}

// Append adds an utterance at the end of the discussion.
func (d *Discuss) Append(speaker string, content Message) {
	d.Items = append(d.Items, SpeakMessage{Speaker: speaker, Content: content})
}

func (d Discuss) Len() int { return len(d.Items) }

// Texts collects all leaf fragments of m in Sign order.
func Texts(m Message) []string {
	var out []string
	if m == nil {
		return out
	}
	m.Sign(VisitorFunc(func(text string) {
		out = append(out, text)
	}))
	return out
}

var messageKinds = newRegistry[Message]("message")

// RegisterMessage makes the variant V decodable under kind. V is decoded by
// value, so V's methods must use value receivers. Registering the same kind
// twice panics.
func RegisterMessage[V Message](kind string) {
	messageKinds.register(kind, decodeAs[Message, V])
}

func init() {
	RegisterMessage[Text](KindText)
	RegisterMessage[Discuss](KindDiscuss)
}

// EncodeMessage writes m with its discriminator.
func EncodeMessage(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("message is nil: %w", ErrValidation)
	}
	return encodeTagged(m.Kind(), m)
}

// DecodeMessage resolves the variant by its "type" field. Unknown kinds fail
// with ErrUnknownVariant.
func DecodeMessage(data []byte) (Message, error) {
	return messageKinds.decode(data)
}

package domain

import (
	"encoding/json"
	"fmt"
)

// Meta is a metadata record attached to stored media. New variants are added
// with RegisterMeta; nothing here needs to change.
type Meta interface {
	MetaKind() string
}

const KindUploader = "uploader"

// Uploader records who pushed the media and from which platform.
type Uploader struct {
	Platform   Platform `json:"platform"`
	UploaderID string   `json:"uploaderId"`
}

func (Uploader) MetaKind() string { return KindUploader }

var metaKinds = newRegistry[Meta]("meta")

// RegisterMeta makes the variant V decodable under kind. Registering the same
// kind twice panics.
func RegisterMeta[V Meta](kind string) {
	metaKinds.register(kind, decodeAs[Meta, V])
}

func init() {
	RegisterMeta[Uploader](KindUploader)
}

func EncodeMeta(m Meta) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("meta is nil: %w", ErrValidation)
	}
	return encodeTagged(m.MetaKind(), m)
}

// DecodeMeta resolves the variant by its "type" field. Unknown kinds fail with
// ErrUnknownVariant instead of falling back to a default.
func DecodeMeta(data []byte) (Meta, error) {
	return metaKinds.decode(data)
}

// MetaList is an ordered list of metadata variants.
type MetaList []Meta

func (l MetaList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	out := make([]json.RawMessage, 0, len(l))
	for _, m := range l {
		raw, err := EncodeMeta(m)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func (l *MetaList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("meta list: %v: %w", err, ErrValidation)
	}
	if raws == nil {
		*l = nil
		return nil
	}
	list := make(MetaList, 0, len(raws))
	for _, raw := range raws {
		m, err := DecodeMeta(raw)
		if err != nil {
			return err
		}
		list = append(list, m)
	}
	*l = list
	return nil
}

// Uploaders returns the uploader records in list order.
func (l MetaList) Uploaders() []Uploader {
	var out []Uploader
	for _, m := range l {
		if u, ok := m.(Uploader); ok {
			out = append(out, u)
		}
	}
	return out
}

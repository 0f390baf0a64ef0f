package plugin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is the single-byte encoding assumed for plugin strings.
const DefaultEncoding = "windows-1251"

// Codec loads and saves binary plugins, decoding string payloads through a
// single-byte text encoding.
type Codec struct {
	enc  encoding.Encoding
	name string
}

// NewCodec resolves the named encoding (WHATWG labels such as "windows-1251"
// or "cp1252"). An empty name selects DefaultEncoding.
func NewCodec(name string) (*Codec, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("plugin encoding %q: %w", name, err)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}
	return &Codec{enc: enc, name: canonical}, nil
}

// Encoding returns the canonical name of the codec's text encoding.
func (c *Codec) Encoding() string { return c.name }

func (c *Codec) decodeField(tag string, payload []byte) Field {
	f := Field{Tag: tag}
	if len(payload) == 0 {
		return f
	}
	body := payload
	terminated := false
	if body[len(body)-1] == 0 {
		body = body[:len(body)-1]
		terminated = true
	}
	if text, ok := c.decodeText(body); ok {
		f.Text = &text
		f.Terminated = terminated
		return f
	}
	f.Data = append([]byte(nil), payload...)
	return f
}

// decodeText accepts body only when it holds no control bytes and survives a
// decode/encode cycle unchanged.
func (c *Codec) decodeText(body []byte) (string, bool) {
	for _, b := range body {
		if b < printableASCIIMin && b != '\t' && b != '\n' && b != '\r' {
			return "", false
		}
		if b == 0x7f {
			return "", false
		}
	}
	text, err := c.enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", false
	}
	back, err := c.enc.NewEncoder().Bytes(text)
	if err != nil || !bytes.Equal(back, body) {
		return "", false
	}
	return string(text), true
}

func (c *Codec) encodeField(f Field) ([]byte, error) {
	if f.Text == nil {
		return f.Data, nil
	}
	body, err := c.enc.NewEncoder().Bytes([]byte(*f.Text))
	if err != nil {
		return nil, fmt.Errorf("%w: field %s text not representable in %s: %w", ErrInvalidObjectSet, f.Tag, c.name, err)
	}
	if f.Terminated {
		body = append(body, 0)
	}
	return body, nil
}

func (c *Codec) decodeFixed(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	text, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return strings.TrimSpace(string(text))
}

// HeaderInfo is the metadata carried by the TES3 header record.
type HeaderInfo struct {
	Version     float32
	Flags       uint32
	Author      string
	Description string
	RecordCount uint32
	Masters     []string
}

// Header extracts plugin metadata from the first record. It reports false when
// the set has no TES3 record or its HEDR payload is not the expected size.
func (c *Codec) Header(set ObjectSet) (HeaderInfo, bool) {
	if len(set) == 0 || set[0].Tag != headerTag {
		return HeaderInfo{}, false
	}
	var info HeaderInfo
	found := false
	for _, f := range set[0].Fields {
		switch f.Tag {
		case hedrTag:
			raw, err := c.encodeField(f)
			if err != nil || len(raw) != hedrSize {
				continue
			}
			info.Version = math.Float32frombits(binary.LittleEndian.Uint32(raw[0:4]))
			info.Flags = binary.LittleEndian.Uint32(raw[4:8])
			info.Author = c.decodeFixed(raw[hedrAuthorOffset : hedrAuthorOffset+hedrAuthorSize])
			info.Description = c.decodeFixed(raw[hedrDescOffset : hedrDescOffset+hedrDescSize])
			info.RecordCount = binary.LittleEndian.Uint32(raw[hedrCountOffset:hedrSize])
			found = true
		case mastTag:
			if f.Text != nil {
				info.Masters = append(info.Masters, *f.Text)
			}
		}
	}
	return info, found
}

// NewHeader builds a TES3 header record from info. The record count is
// refreshed on save, so info.RecordCount only matters for in-memory use.
// Each master gets the customary MAST/DATA pair with a zero size.
func (c *Codec) NewHeader(info HeaderInfo) (Record, error) {
	raw := make([]byte, hedrSize)
	binary.LittleEndian.PutUint32(raw[0:4], math.Float32bits(info.Version))
	binary.LittleEndian.PutUint32(raw[4:8], info.Flags)
	if err := c.encodeFixed(raw[hedrAuthorOffset:hedrAuthorOffset+hedrAuthorSize], info.Author); err != nil {
		return Record{}, fmt.Errorf("author: %w", err)
	}
	if err := c.encodeFixed(raw[hedrDescOffset:hedrDescOffset+hedrDescSize], info.Description); err != nil {
		return Record{}, fmt.Errorf("description: %w", err)
	}
	binary.LittleEndian.PutUint32(raw[hedrCountOffset:hedrSize], info.RecordCount)

	rec := Record{Tag: headerTag, Fields: []Field{DataField(hedrTag, raw)}}
	for _, master := range info.Masters {
		rec.Fields = append(rec.Fields, TextField(mastTag, master), DataField("DATA", make([]byte, 8)))
	}
	return rec, nil
}

// encodeFixed writes text into a NUL padded slot, failing when it does not fit.
func (c *Codec) encodeFixed(dst []byte, text string) error {
	encoded, err := c.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return fmt.Errorf("%w: %q is not representable in %s", ErrInvalidObjectSet, text, c.name)
	}
	if len(encoded) > len(dst) {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidObjectSet, text, len(dst))
	}
	copy(dst, encoded)
	return nil
}

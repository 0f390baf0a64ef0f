package plugin

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Load reads and decodes the plugin at path. Malformed content yields a
// *DecodeError wrapping ErrMalformed; filesystem failures are returned as-is.
func (c *Codec) Load(path string) (ObjectSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin: %w", err)
	}
	defer file.Close()

	set, err := c.Decode(bufio.NewReader(file))
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Path = path
		}
		return nil, err
	}
	return set, nil
}

// Decode parses a plugin stream.
func (c *Codec) Decode(r io.Reader) (ObjectSet, error) {
	var (
		set    ObjectSet
		offset int64
	)
	for {
		var hdr recordHeader
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, malformed(offset, "truncated record header")
			}
			return nil, fmt.Errorf("read record header: %w", err)
		}

		tag := string(hdr.Tag[:])
		if !validTag(tag) {
			return nil, malformed(offset, "invalid record tag %q", tag)
		}
		if len(set) == 0 && tag != headerTag {
			return nil, malformed(offset, "invalid plugin magic %q, want %q", tag, headerTag)
		}
		if hdr.Size > maxRecordSize {
			return nil, malformed(offset, "record %s size %d exceeds limit", tag, hdr.Size)
		}

		payload := make([]byte, hdr.Size)
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, malformed(offset, "record %s truncated: want %d payload bytes", tag, hdr.Size)
			}
			return nil, fmt.Errorf("read record %s: %w", tag, err)
		}

		fields, err := c.decodeFields(tag, payload, offset+recordHeaderSize)
		if err != nil {
			return nil, err
		}
		set = append(set, Record{
			Tag:     tag,
			Unknown: hdr.Unknown,
			Flags:   hdr.Flags,
			Fields:  fields,
		})
		offset += recordHeaderSize + int64(hdr.Size)
	}

	if len(set) == 0 {
		return nil, malformed(0, "empty plugin")
	}
	return set, nil
}

func (c *Codec) decodeFields(recordTag string, payload []byte, base int64) ([]Field, error) {
	fields := make([]Field, 0, 4)
	pos := 0
	for pos < len(payload) {
		if len(payload)-pos < fieldHeaderSize {
			return nil, malformed(base+int64(pos), "record %s: truncated sub-record header", recordTag)
		}
		tag := string(payload[pos : pos+tagLen])
		if !validTag(tag) {
			return nil, malformed(base+int64(pos), "record %s: invalid sub-record tag %q", recordTag, tag)
		}
		size := binary.LittleEndian.Uint32(payload[pos+tagLen : pos+fieldHeaderSize])
		start := pos + fieldHeaderSize
		if uint64(size) > uint64(len(payload)-start) {
			return nil, malformed(base+int64(pos), "record %s: sub-record %s size %d overruns record", recordTag, tag, size)
		}
		end := start + int(size)
		fields = append(fields, c.decodeField(tag, payload[start:end]))
		pos = end
	}
	return fields, nil
}

package plugin

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// Save encodes set and writes it to path. The bytes go to a temp file in the
// destination directory that is renamed into place once complete.
func (c *Codec) Save(path string, set ObjectSet) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".tes3conv_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	w := bufio.NewWriter(tempFile)
	if err := c.Encode(w, set); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush plugin: %w", err)
	}
	if err := tempFile.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	committed = true
	return nil
}

// Encode writes set in binary form. The record count stored in the header's
// HEDR sub-record is refreshed to match the set.
func (c *Codec) Encode(w io.Writer, set ObjectSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	for i, rec := range set {
		payloads := make([][]byte, len(rec.Fields))
		size := uint64(0)
		for j, f := range rec.Fields {
			body, err := c.encodeField(f)
			if err != nil {
				return fmt.Errorf("record %d (%s): %w", i, rec.Tag, err)
			}
			if i == 0 && f.Tag == hedrTag && len(body) == hedrSize {
				body = withRecordCount(body, len(set)-1)
			}
			if uint64(len(body)) > math.MaxUint32 {
				return fmt.Errorf("%w: record %d (%s) field %s too large", ErrInvalidObjectSet, i, rec.Tag, f.Tag)
			}
			payloads[j] = body
			size += fieldHeaderSize + uint64(len(body))
		}
		if size > maxRecordSize {
			return fmt.Errorf("%w: record %d (%s) size %d exceeds limit", ErrInvalidObjectSet, i, rec.Tag, size)
		}

		hdr := recordHeader{
			Tag:     tagBytes(rec.Tag),
			Size:    uint32(size),
			Unknown: rec.Unknown,
			Flags:   rec.Flags,
		}
		if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
			return fmt.Errorf("write record header: %w", err)
		}
		for j, f := range rec.Fields {
			fh := fieldHeader{Tag: tagBytes(f.Tag), Size: uint32(len(payloads[j]))}
			if err := binary.Write(w, binary.LittleEndian, &fh); err != nil {
				return fmt.Errorf("write sub-record header: %w", err)
			}
			if _, err := w.Write(payloads[j]); err != nil {
				return fmt.Errorf("write sub-record %s: %w", f.Tag, err)
			}
		}
	}
	return nil
}

func withRecordCount(hedr []byte, count int) []byte {
	out := make([]byte, len(hedr))
	copy(out, hedr)
	binary.LittleEndian.PutUint32(out[hedrCountOffset:hedrSize], uint32(count))
	return out
}

package plugin

// TES3 layout constants
const (
	// headerTag identifies the mandatory first record of every plugin.
	headerTag = "TES3"
	// hedrTag is the sub-record of the header record carrying file metadata.
	hedrTag = "HEDR"
	// mastTag names a master file the plugin depends on.
	mastTag = "MAST"

	recordHeaderSize = 16
	fieldHeaderSize  = 8

	// maxRecordSize bounds a single record payload so a corrupt size word
	// cannot trigger a huge allocation.
	maxRecordSize = 64 << 20

	// HEDR payload: version float32, flags uint32, author [32]byte,
	// description [256]byte, record count uint32.
	hedrSize          = 300
	hedrAuthorOffset  = 8
	hedrAuthorSize    = 32
	hedrDescOffset    = 40
	hedrDescSize      = 256
	hedrCountOffset   = 296
	tagLen            = 4
	printableASCIIMin = 0x20
	printableASCIIMax = 0x7e
)

// recordHeader precedes every record payload (16 bytes).
type recordHeader struct {
	Tag     [4]byte
	Size    uint32 // payload size, header excluded
	Unknown uint32 // unused by the engine, preserved verbatim
	Flags   uint32
}

// fieldHeader precedes every sub-record payload (8 bytes).
type fieldHeader struct {
	Tag  [4]byte
	Size uint32
}

func validTag(tag string) bool {
	if len(tag) != tagLen {
		return false
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] < printableASCIIMin || tag[i] > printableASCIIMax {
			return false
		}
	}
	return true
}

func tagBytes(tag string) [4]byte {
	var out [4]byte
	copy(out[:], tag)
	return out
}

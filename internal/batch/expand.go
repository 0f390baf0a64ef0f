package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tes3conv/internal/convert"
	"tes3conv/internal/services"
)

// Item is one conversion scheduled by a batch.
type Item struct {
	InputPath string
	Direction convert.Direction
}

var binaryExtensions = map[string]bool{".esp": true, ".esm": true}

// ExpandOptions controls how arguments are turned into items.
type ExpandOptions struct {
	// Direction forces every item's direction. When nil the direction is
	// detected from each file's extension.
	Direction *convert.Direction
	Recursive bool
}

// Expand resolves files and directories into a sorted, de-duplicated list of
// items. Directories contribute only plugin (.esp, .esm) and text (.json)
// files; with a forced direction only files of the matching source type are
// picked up. Files named explicitly are always included.
func Expand(paths []string, opts ExpandOptions) ([]Item, error) {
	seen := make(map[string]bool)
	var items []Item
	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = filepath.Clean(path)
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		dir := convert.DetectDirection(path)
		if opts.Direction != nil {
			dir = *opts.Direction
		}
		items = append(items, Item{InputPath: path, Direction: dir})
	}

	for _, arg := range paths {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "batch", "expand inputs", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != arg && !opts.Recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && wanted(d.Name(), opts.Direction) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "batch", "walk directory", arg, err)
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].InputPath < items[j].InputPath })
	return items, nil
}

func wanted(name string, forced *convert.Direction) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	isText := ext == "."+convert.TextExtension
	isBinary := binaryExtensions[ext]
	if forced == nil {
		return isText || isBinary
	}
	switch *forced {
	case convert.ToText:
		return isBinary
	case convert.ToBinary:
		return isText
	default:
		return false
	}
}

// Describe renders an item as "<path> (<direction>)".
func (i Item) Describe() string {
	return fmt.Sprintf("%s (%s)", i.InputPath, i.Direction.Label())
}

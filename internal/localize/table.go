package localize

// Pair links a native Cyrillic rune with its legacy stand-in.
type Pair struct {
	Native rune
	Legacy rune
}

var pairs = [...]Pair{
	{'А', 'À'}, {'Б', 'Á'}, {'В', 'Â'}, {'Г', 'Ã'}, {'Д', 'Ä'},
	{'Е', 'Å'}, {'Ж', 'Æ'}, {'З', 'Ç'}, {'И', 'È'}, {'Й', 'É'},
	{'К', 'Ê'}, {'Л', 'Ë'}, {'М', 'Ì'}, {'Н', 'Í'}, {'О', 'Î'},
	{'П', 'Ï'}, {'Р', 'Ð'}, {'С', 'Ñ'}, {'Т', 'Ò'}, {'У', 'Ó'},
	{'Ф', 'Ô'}, {'Х', 'Õ'}, {'Ц', 'Ö'}, {'Ч', '×'}, {'Ш', 'Ø'},
	{'Щ', 'Ù'}, {'Ъ', 'Ú'}, {'Ы', 'Û'}, {'Ь', 'Ü'}, {'Э', 'Ý'},
	{'Ю', 'Þ'}, {'Я', 'ß'}, {'а', 'à'}, {'б', 'á'}, {'в', 'â'},
	{'г', 'ã'}, {'д', 'ä'}, {'е', 'å'}, {'ж', 'æ'}, {'з', 'ç'},
	{'и', 'è'}, {'й', 'é'}, {'к', 'ê'}, {'л', 'ë'}, {'м', 'ì'},
	{'н', 'í'}, {'о', 'î'}, {'п', 'ï'}, {'р', 'ð'}, {'с', 'ñ'},
	{'т', 'ò'}, {'у', 'ó'}, {'ф', 'ô'}, {'х', 'õ'}, {'ц', 'ö'},
	{'ч', '÷'}, {'ш', 'ø'}, {'щ', 'ù'}, {'ъ', 'ú'}, {'ы', 'û'},
	{'ь', 'ü'}, {'э', 'ý'}, {'ю', 'þ'}, {'я', 'ÿ'}, {'ё', '¸'},
	{'Ё', '¨'},
}

var (
	nativeToLegacy = make(map[rune]rune, len(pairs))
	legacyToNative = make(map[rune]rune, len(pairs))
)

func init() {
	for _, p := range pairs {
		nativeToLegacy[p.Native] = p.Legacy
		legacyToNative[p.Legacy] = p.Native
	}
}

// Pairs returns a copy of the mapping table in its canonical order.
func Pairs() []Pair {
	out := make([]Pair, len(pairs))
	copy(out, pairs[:])
	return out
}

// Len reports the number of mapped characters.
func Len() int { return len(pairs) }

package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// fallbackEncodings is the ordered list of decoders tried for plain-text
// files that are not valid UTF-8. GBK is a superset of GB2312; GB18030
// covers the rest of the simplified-Chinese space.
var fallbackEncodings = []encoding.Encoding{
	simplifiedchinese.GBK,
	simplifiedchinese.GB18030,
	charmap.ISO8859_1,
}

// extractPlain decodes raw text bytes, trying UTF-8 first and then each
// fallback encoding in order. If every attempt fails, the bytes are decoded
// as UTF-8 with replacement characters so extraction never hard-fails on a
// text file.
func extractPlain(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, enc := range fallbackEncodings {
		decoded, err := enc.NewDecoder().Bytes(data)
		// The decoders substitute U+FFFD for unmappable bytes instead of
		// failing; a replacement character in the output means the guess
		// was wrong, since the input was not valid UTF-8 to begin with.
		if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
			continue
		}
		return string(decoded), nil
	}

	// Lossy last resort: replace invalid sequences.
	return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
}

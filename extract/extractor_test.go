package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestDocExtractor_UnsupportedFormat(t *testing.T) {
	e := NewDocExtractor()

	_, err := e.Extract([]byte("data"), ".exe")
	require.Error(t, err)

	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".exe", unsupported.Ext)
	assert.Contains(t, err.Error(), ".exe")
}

func TestDocExtractor_Supports(t *testing.T) {
	e := NewDocExtractor()

	for _, ext := range []string{".pdf", ".docx", ".txt", ".md"} {
		assert.True(t, e.Supports(ext), "expected support for %s", ext)
	}
	assert.True(t, e.Supports(".PDF"), "extension matching is case-insensitive")
	assert.False(t, e.Supports(".html"))
	assert.False(t, e.Supports(""))
}

func TestExtractPlain_UTF8(t *testing.T) {
	e := NewDocExtractor()

	text, err := e.Extract([]byte("plain utf-8 text\nwith a second line"), ".txt")
	require.NoError(t, err)
	assert.Equal(t, "plain utf-8 text\nwith a second line", text)
}

func TestExtractPlain_Markdown(t *testing.T) {
	e := NewDocExtractor()

	text, err := e.Extract([]byte("# Title\n\nBody."), ".md")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody.", text)
}

func TestExtractPlain_GBK(t *testing.T) {
	original := "知识库管理系统"
	encoded, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(original))
	require.NoError(t, err)

	e := NewDocExtractor()
	text, err := e.Extract(encoded, ".txt")
	require.NoError(t, err)
	assert.Equal(t, original, text)
}

func TestExtractPlain_GB18030(t *testing.T) {
	original := "文件处理进度监控"
	encoded, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte(original))
	require.NoError(t, err)

	// GB18030 text within the GBK range decodes identically via GBK;
	// either way the round trip must hold.
	e := NewDocExtractor()
	text, err := e.Extract(encoded, ".txt")
	require.NoError(t, err)
	assert.Equal(t, original, text)
}

func TestExtractPlain_Latin1(t *testing.T) {
	original := "café à côté"
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(original))
	require.NoError(t, err)

	e := NewDocExtractor()
	text, err := e.Extract(encoded, ".txt")
	require.NoError(t, err)

	// The GBK and GB18030 attempts produce replacement characters for these
	// bytes, so the chain must fall through to Latin-1 and round-trip.
	assert.Equal(t, original, text)
}

func TestExtractPlain_FallbackSkipsLossyDecode(t *testing.T) {
	// 0xE9 followed by a space is an invalid GBK/GB18030 sequence; a decoder
	// that substitutes U+FFFD and reports success must not win the chain.
	text, err := extractPlain([]byte{0xE9, 0x20})
	require.NoError(t, err)
	assert.Equal(t, "é ", text)
}

func TestExtractPlain_NeverFails(t *testing.T) {
	// Arbitrary binary garbage still decodes via the lossy fallback chain.
	e := NewDocExtractor()
	text, err := e.Extract([]byte{0xff, 0xfe, 0x00, 0x81, 0xff, 0xff}, ".txt")
	require.NoError(t, err)
	assert.NotNil(t, text)
}

package splitter

import (
	"fmt"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// DecodeText converts raw file bytes to a UTF-8 string. Valid UTF-8
// passes through untouched; anything else goes through charset detection
// and transcoding. Returns an error for bytes that are not text in any
// recognizable encoding.
func DecodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return "", fmt.Errorf("failed to detect encoding: %w", err)
	}

	enc, err := htmlindex.Get(result.Charset)
	if err != nil {
		return "", fmt.Errorf("unsupported encoding %q: %w", result.Charset, err)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s content: %w", result.Charset, err)
	}
	return string(decoded), nil
}

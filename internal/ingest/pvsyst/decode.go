package pvsyst

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingLatin1      = "iso-8859-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns raw export bytes into text. It tries strict UTF-8 first, then
// Windows-1252, and finally ISO-8859-1, which accepts every byte sequence.
// It never fails; the name of the encoding used is returned alongside.
func Decode(data []byte) (string, string) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), EncodingUTF8
	}
	if text, ok := decodeWith(charmap.Windows1252, data); ok && !strings.ContainsRune(text, utf8.RuneError) {
		return text, EncodingWindows1252
	}
	if text, ok := decodeWith(charmap.ISO8859_1, data); ok {
		return text, EncodingLatin1
	}
	return strings.ToValidUTF8(string(data), "�"), EncodingUTF8
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// splitLines splits text on \n, \r\n and \r.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

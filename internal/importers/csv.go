package importers

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText converts exported text to UTF-8. Files without a BOM that are not
// valid UTF-8 are Windows-1252, the default of the spreadsheet tools in use.
func decodeText(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		decoded, _, err := transform.Bytes(xunicode.UTF16(xunicode.LittleEndian, xunicode.ExpectBOM).NewDecoder(), data)
		return decoded, "utf-16le", err
	case bytes.HasPrefix(data, bomUTF16BE):
		decoded, _, err := transform.Bytes(xunicode.UTF16(xunicode.BigEndian, xunicode.ExpectBOM).NewDecoder(), data)
		return decoded, "utf-16be", err
	case utf8.Valid(data):
		return data, "utf-8", nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	return decoded, "windows-1252", err
}

// detectDelimiter picks the most frequent separator on the header line.
func detectDelimiter(data []byte) rune {
	line, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	header := string(line)

	best, bestCount := ',', strings.Count(header, ",")
	for _, candidate := range []rune{';', '\t'} {
		if n := strings.Count(header, string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func parseDelimited(data []byte) (*Table, error) {
	decoded, _, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = detectDelimiter(decoded)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := newTable(FormatCSV, header)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}

		line, _ := reader.FieldPos(0)
		cells := make([]any, len(record))
		for i, v := range record {
			cells[i] = v
		}
		table.appendRow(line, cells)
	}
	return table, nil
}

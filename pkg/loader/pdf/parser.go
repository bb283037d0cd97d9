package pdf

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

func parsePDF(input []byte) ([]byte, error) {
	reader, err := pdf.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages with broken font tables happen in scanned
			// publications; skip them instead of failing the file.
			continue
		}

		builder.WriteString(text)
		builder.WriteString("\n\n")
	}

	text := strings.TrimSpace(builder.String())
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	if text == "" {
		return nil, fmt.Errorf("no extractable text in pdf")
	}

	return []byte(text + "\n"), nil
}

package ocr

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"tessera/internal/store"
)

// altoNamespaces lists the schema namespaces ALTO files appear with in the
// wild. Files with no namespace at all are accepted as a last resort.
var altoNamespaces = map[string]struct{}{
	"http://www.loc.gov/standards/alto/ns-v3#": {},
	"http://www.loc.gov/standards/alto/ns-v2#": {},
	"http://schema.ccs-gmbh.com/ALTO":          {},
	"":                                         {},
}

// ParseALTO extracts word blocks and the reconstructed full text from an
// ALTO XML stream. Word confidence (WC, 0..1) is scaled to percent. Page
// numbers follow the PHYSICAL_IMG_NR attribute when present, falling back
// to document order; a single-page file without Page elements is page 1.
func ParseALTO(r io.Reader) (string, []store.OCRBlock, error) {
	decoder := xml.NewDecoder(r)

	var (
		blocks     []store.OCRBlock
		text       strings.Builder
		page       int
		pageCount  int
		order      int
		lineOpen   bool
		sawContent bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("parse alto: %w", err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			if _, ok := altoNamespaces[element.Name.Space]; !ok {
				continue
			}
			switch element.Name.Local {
			case "Page":
				pageCount++
				page = pageCount
				if n := altoAttrInt(element, "PHYSICAL_IMG_NR"); n > 0 {
					page = n
				}
			case "TextLine":
				lineOpen = true
			case "String":
				content := altoAttr(element, "CONTENT")
				if content == "" {
					continue
				}
				if page == 0 {
					page = 1
				}
				blocks = append(blocks, store.OCRBlock{
					PageNumber: page,
					BlockType:  "word",
					Text:       content,
					X:          altoAttrInt(element, "HPOS"),
					Y:          altoAttrInt(element, "VPOS"),
					Width:      altoAttrInt(element, "WIDTH"),
					Height:     altoAttrInt(element, "HEIGHT"),
					Confidence: altoConfidence(element),
					BlockOrder: order,
				})
				order++
				if sawContent {
					text.WriteByte(' ')
				}
				text.WriteString(content)
				sawContent = true
			}
		case xml.EndElement:
			if element.Name.Local == "TextLine" && lineOpen {
				lineOpen = false
				if sawContent {
					text.WriteByte('\n')
					sawContent = false
				}
			}
		}
	}

	return strings.TrimRight(text.String(), "\n"), blocks, nil
}

func altoAttr(element xml.StartElement, name string) string {
	for _, attr := range element.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func altoAttrInt(element xml.StartElement, name string) int {
	value := strings.TrimSpace(altoAttr(element, name))
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return int(math.Round(parsed))
}

func altoConfidence(element xml.StartElement) float64 {
	value := strings.TrimSpace(altoAttr(element, "WC"))
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed * 100
}

package ocr

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"tessera/internal/store"
)

// ParseHOCR extracts word blocks and the reconstructed full text from an
// hOCR stream, the format tesseract emits. Word geometry comes from the
// title attribute, e.g. `title="bbox 10 20 30 40; x_wconf 96"`, where the
// bbox carries the two corner coordinates.
func ParseHOCR(r io.Reader) (string, []store.OCRBlock, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", nil, fmt.Errorf("parse hocr: %w", err)
	}

	var (
		blocks     []store.OCRBlock
		text       strings.Builder
		page       int
		order      int
		sawContent bool
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			class := attrValue(n, "class")
			switch {
			case hasClass(class, "ocr_page"):
				page++
			case hasClass(class, "ocrx_word"):
				word := strings.TrimSpace(nodeText(n))
				if word != "" {
					if page == 0 {
						page = 1
					}
					block := store.OCRBlock{
						PageNumber: page,
						BlockType:  "word",
						Text:       word,
						BlockOrder: order,
					}
					block.X, block.Y, block.Width, block.Height, block.Confidence = parseHOCRTitle(attrValue(n, "title"))
					blocks = append(blocks, block)
					order++
					if sawContent {
						text.WriteByte(' ')
					}
					text.WriteString(word)
					sawContent = true
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && hasClass(attrValue(n, "class"), "ocr_line") && sawContent {
			text.WriteByte('\n')
			sawContent = false
		}
	}
	walk(doc)

	return strings.TrimRight(text.String(), "\n"), blocks, nil
}

// parseHOCRTitle decodes the bbox corners and x_wconf confidence from an
// hOCR title attribute. The bbox is converted from corner pairs to origin
// plus size.
func parseHOCRTitle(title string) (x, y, width, height int, confidence float64) {
	for _, part := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "bbox":
			if len(fields) != 5 {
				continue
			}
			coords := make([]int, 4)
			valid := true
			for i, field := range fields[1:] {
				parsed, err := strconv.Atoi(field)
				if err != nil {
					valid = false
					break
				}
				coords[i] = parsed
			}
			if valid {
				x, y = coords[0], coords[1]
				width, height = coords[2]-coords[0], coords[3]-coords[1]
			}
		case "x_wconf":
			if len(fields) == 2 {
				if parsed, err := strconv.ParseFloat(fields[1], 64); err == nil {
					confidence = parsed
				}
			}
		}
	}
	return x, y, width, height, confidence
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func hasClass(classAttr, class string) bool {
	for _, candidate := range strings.Fields(classAttr) {
		if candidate == class {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var text strings.Builder
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			text.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return text.String()
}

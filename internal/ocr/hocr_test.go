package ocr

import (
	"strings"
	"testing"
)

const hocrSample = `<html>
<body>
  <div class="ocr_page" title="image page.png; bbox 0 0 1000 1400">
    <span class="ocr_line" title="bbox 10 20 500 45">
      <span class="ocrx_word" title="bbox 10 20 30 40; x_wconf 96">Dear</span>
      <span class="ocrx_word" title="bbox 35 20 80 40; x_wconf 91">Sir,</span>
    </span>
    <span class="ocr_line" title="bbox 10 60 500 85">
      <span class="ocrx_word" title="bbox 10 60 120 85; x_wconf 88">Greetings</span>
    </span>
  </div>
</body>
</html>`

func TestParseHOCR(t *testing.T) {
	fullText, blocks, err := ParseHOCR(strings.NewReader(hocrSample))
	if err != nil {
		t.Fatalf("ParseHOCR: %v", err)
	}
	if fullText != "Dear Sir,\nGreetings" {
		t.Fatalf("full text = %q", fullText)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}

	first := blocks[0]
	if first.Text != "Dear" {
		t.Fatalf("first word = %q", first.Text)
	}
	// bbox corners 10 20 30 40 convert to origin 10,20 and size 20x20.
	if first.X != 10 || first.Y != 20 || first.Width != 20 || first.Height != 20 {
		t.Fatalf("bbox conversion: %+v", first)
	}
	if first.Confidence != 96 {
		t.Fatalf("confidence = %v", first.Confidence)
	}
	if first.PageNumber != 1 {
		t.Fatalf("page = %d", first.PageNumber)
	}
}

func TestParseHOCRMultiplePages(t *testing.T) {
	sample := `<html><body>
  <div class="ocr_page"><span class="ocrx_word" title="bbox 0 0 5 5; x_wconf 50">one</span></div>
  <div class="ocr_page"><span class="ocrx_word" title="bbox 0 0 5 5; x_wconf 50">two</span></div>
</body></html>`
	_, blocks, err := ParseHOCR(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ParseHOCR: %v", err)
	}
	if len(blocks) != 2 || blocks[0].PageNumber != 1 || blocks[1].PageNumber != 2 {
		t.Fatalf("pages: %+v", blocks)
	}
}

func TestParseHOCRToleratesMissingTitleParts(t *testing.T) {
	sample := `<p><span class="ocrx_word" title="x_wconf 70">word</span>
<span class="ocrx_word" title="bbox 1 2 3">bad</span>
<span class="ocrx_word">bare</span></p>`
	fullText, blocks, err := ParseHOCR(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ParseHOCR: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if blocks[0].Confidence != 70 || blocks[0].Width != 0 {
		t.Fatalf("first block: %+v", blocks[0])
	}
	if blocks[1].Width != 0 || blocks[2].Confidence != 0 {
		t.Fatalf("defaulted blocks: %+v", blocks[1:])
	}
	if fullText != "word bad bare" {
		t.Fatalf("full text = %q", fullText)
	}
}

func TestParseHOCRSkipsEmptyWords(t *testing.T) {
	sample := `<p><span class="ocrx_word" title="bbox 0 0 1 1">   </span></p>`
	fullText, blocks, err := ParseHOCR(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ParseHOCR: %v", err)
	}
	if fullText != "" || len(blocks) != 0 {
		t.Fatalf("empty word kept: %q %+v", fullText, blocks)
	}
}

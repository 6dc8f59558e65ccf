package export

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	titleSize = 16
	textColor = "000000"
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet   = regexp.MustCompile(`^[\-\*+]\s+(.+)$`)
	reNumbered = regexp.MustCompile(`^\d+[.)]\s+(.+)$`)
	reQuote    = regexp.MustCompile(`^>\s?(.*)$`)
)

// docWriter appends styled paragraphs to a godocx document.
type docWriter struct {
	doc *docx.RootDoc
}

func newDocWriter(title string) (*docWriter, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}
	w := &docWriter{doc: doc}
	w.styled(title, true, titleSize)
	return w, nil
}

// markdownToDocx renders the note body. Headings, bullets, numbered items,
// quotes and **bold** spans are recognised; other markup is stripped.
func markdownToDocx(title, markdown, outputPath string) error {
	w, err := newDocWriter(title)
	if err != nil {
		return err
	}

	inFence := false
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			if trimmed != "" {
				w.plain(trimmed)
			}
			continue
		}
		if trimmed == "" || trimmed == "---" || trimmed == "***" {
			continue
		}

		switch {
		case reHeading.MatchString(trimmed):
			m := reHeading.FindStringSubmatch(trimmed)
			w.styled(m[2], true, headingSize(len(m[1])))
		case reBullet.MatchString(trimmed):
			w.rich("• " + reBullet.FindStringSubmatch(trimmed)[1])
		case reNumbered.MatchString(trimmed):
			w.rich(trimmed)
		case reQuote.MatchString(trimmed):
			w.rich(reQuote.FindStringSubmatch(trimmed)[1])
		default:
			w.rich(trimmed)
		}
	}

	return w.doc.SaveTo(outputPath)
}

// transcriptToDocx writes plain text, one paragraph per blank-line separated block.
func transcriptToDocx(title, text, outputPath string) error {
	w, err := newDocWriter(title)
	if err != nil {
		return err
	}
	w.doc.AddParagraph("")

	for _, block := range splitBlocks(text) {
		w.plain(block)
	}

	return w.doc.SaveTo(outputPath)
}

func splitBlocks(text string) []string {
	var (
		blocks  []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, " "))
			current = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		current = append(current, trimmed)
	}
	flush()
	return blocks
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func (w *docWriter) styled(text string, bold bool, size uint64) {
	run := w.doc.AddParagraph("").AddText(cleanInline(text)).Font(fontName).Size(size).Color(textColor)
	if bold {
		run.Bold(true)
	}
}

func (w *docWriter) plain(text string) {
	w.doc.AddParagraph("").AddText(text).Font(fontName).Size(fontSize).Color(textColor)
}

// rich splits text on **bold** spans and emits alternating runs.
func (w *docWriter) rich(text string) {
	p := w.doc.AddParagraph("")
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanInline(part)).Font(fontName).Size(fontSize).Color(textColor)
		}
		if i < len(matches) {
			p.AddText(cleanInline(matches[i][1])).Font(fontName).Size(fontSize).Color(textColor).Bold(true)
		}
	}
}

func cleanInline(s string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
}

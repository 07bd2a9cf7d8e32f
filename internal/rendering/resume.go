package rendering

import (
	"regexp"
	"strings"
)

// BlockKind identifies a resume block.
type BlockKind string

const (
	KindHeading   BlockKind = "heading"
	KindList      BlockKind = "list"
	KindParagraph BlockKind = "paragraph"
	KindSpacer    BlockKind = "spacer"
)

// Block is one node of a rendered resume. Text is the source text with
// markers removed; HTML is the escaped inline markup.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Text  string    `json:"text,omitempty"`
	HTML  string    `json:"html,omitempty"`
	Items []Item    `json:"items,omitempty"`
}

// Item is one bullet of a list block.
type Item struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

var (
	markdownHeading = regexp.MustCompile(`^#{1,3}\s+`)
	capsHeading     = regexp.MustCompile(`^[A-Z &\-/]{3,}$`)
	bulletMarker    = regexp.MustCompile(`^[-•*]\s+`)
)

// RenderResume classifies each line of a resume section. Leading and
// trailing blank lines of the whole input are ignored; every other blank
// line becomes a spacer. Unrecognized lines become paragraphs.
func RenderResume(text string) []Block {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Block{}
	}

	blocks := []Block{}
	list := -1 // index of the open list block, if any

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			list = -1
			blocks = append(blocks, Block{Kind: KindSpacer})

		case markdownHeading.MatchString(line):
			list = -1
			heading := strings.TrimSpace(stripBold(markdownHeading.ReplaceAllString(line, "")))
			blocks = append(blocks, Block{Kind: KindHeading, Text: heading, HTML: EscapeHTML(heading)})

		case capsHeading.MatchString(line):
			list = -1
			blocks = append(blocks, Block{Kind: KindHeading, Text: line, HTML: EscapeHTML(line)})

		case bulletMarker.MatchString(line):
			if list < 0 {
				blocks = append(blocks, Block{Kind: KindList, Items: []Item{}})
				list = len(blocks) - 1
			}
			item := bulletMarker.ReplaceAllString(line, "")
			blocks[list].Items = append(blocks[list].Items, Item{Text: item, HTML: InlineHTML(item)})

		default:
			list = -1
			blocks = append(blocks, Block{Kind: KindParagraph, Text: line, HTML: InlineHTML(line)})
		}
	}
	return blocks
}

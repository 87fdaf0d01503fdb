// Package dg_helpers shapes command output into Discord embeds.
package dg_helpers

import (
	"unicode/utf8"

	"github.com/TannerKvarfordt/ubiquity/mathutils"
	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
)

const (
	// ColorGray is the neutral embed colour used by every command.
	ColorGray = 0x2F3136
	// ColorRed marks failures.
	ColorRed = 0xED4245

	// TitleLimit is the API-defined limit on an embed title, in characters.
	TitleLimit = 256
	// DescriptionLimit is the API-defined limit on an embed description, in
	// characters.
	DescriptionLimit = 4096

	// API-defined limit on the length of an embed field value, in bytes.
	fieldValueLimit = 1024
	codeFence       = "```"
	ellipsis        = "..."
)

// Author identifies who an embed is about or on behalf of.
type Author struct {
	Name    string
	IconURL string
}

// Display is a display object under construction. It never fails; a title
// or description over Discord's limits is cut on a character boundary.
type Display struct {
	e *embed.Embed
}

// NewDisplay starts a display object with a title, colour and author.
// An author without a name is omitted.
func NewDisplay(title string, color int, author Author) *Display {
	e := embed.NewEmbed().SetColor(color)
	e.Title = title
	if author.Name != "" {
		e.SetAuthor(author.Name, author.IconURL)
	}
	return &Display{e: e}
}

// Describe sets the single description block.
func (d *Display) Describe(text string) *Display {
	d.e.Description = text
	return d
}

// Field appends a (key, text) field. Fields keep the order they are added in.
func (d *Display) Field(key, text string) *Display {
	d.e.AddField(key, text)
	return d
}

// Image sets the large image shown below the body.
func (d *Display) Image(url string) *Display {
	d.e.SetImage(url)
	return d
}

// Embed returns the finished embed.
func (d *Display) Embed() *discordgo.MessageEmbed {
	d.e.Title = truncateRunes(d.e.Title, TitleLimit)
	d.e.Description = truncateRunes(d.e.Description, DescriptionLimit)
	return d.e.MessageEmbed
}

// FitsTitle reports whether s can be used as an embed title unchanged.
func FitsTitle(s string) bool {
	return utf8.RuneCountInString(s) <= TitleLimit
}

// FitsDescription reports whether s can be used as an embed description
// unchanged.
func FitsDescription(s string) bool {
	return utf8.RuneCountInString(s) <= DescriptionLimit
}

// truncateRunes cuts s to at most limit characters.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// CodeBlock wraps text in a code fence, shortening the text so the fenced
// result still fits in a single embed field.
func CodeBlock(text string) string {
	budget := fieldValueLimit - 2*len(codeFence)
	if len(text) > budget {
		budget -= len(ellipsis)
		cut := 0
		for i, r := range text {
			end := i + utf8.RuneLen(r)
			if end > budget {
				break
			}
			cut = end
		}
		text = text[:mathutils.Min(cut, len(text))] + ellipsis
	}
	return codeFence + text + codeFence
}

// DescriptionCodeBlock wraps text in a code fence, shortening the text so the
// fenced result still fits in an embed description.
func DescriptionCodeBlock(text string) string {
	budget := DescriptionLimit - 2*utf8.RuneCountInString(codeFence)
	if utf8.RuneCountInString(text) > budget {
		text = truncateRunes(text, budget-utf8.RuneCountInString(ellipsis)) + ellipsis
	}
	return codeFence + text + codeFence
}

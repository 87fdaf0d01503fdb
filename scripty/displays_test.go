package scripty

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/scripty-bot/scripty/scripty/dg_helpers"
	"github.com/scripty-bot/scripty/scripty/translate"
)

func TestAvatarDisplay(t *testing.T) {
	u := &discordgo.User{ID: "80351110224678912", Username: "nelly", Avatar: "8342729096ea3675442027381ff50dfe"}
	e := avatarDisplay(u)

	if e.Title != "Avatar" || e.Color != dg_helpers.ColorGray {
		t.Errorf("embed = %+v", e)
	}
	if e.Author == nil || e.Author.Name != "nelly" {
		t.Fatalf("author = %+v", e.Author)
	}
	if e.Image == nil || e.Image.URL != u.AvatarURL("") || e.Author.IconURL != e.Image.URL {
		t.Errorf("image = %+v, author icon = %q", e.Image, e.Author.IconURL)
	}

	noAvatar := avatarDisplay(&discordgo.User{ID: "1", Username: "plain"})
	if noAvatar.Image == nil || noAvatar.Image.URL == "" {
		t.Error("users without an avatar should show the default avatar")
	}
}

func TestEchoDisplay(t *testing.T) {
	e := echoDisplay("hello there", dg_helpers.Author{Name: "someone"})
	if e.Title != "Echo" || e.Description != "```hello there```" {
		t.Errorf("embed = %+v", e)
	}
	if e.Author == nil || e.Author.Name != "someone" {
		t.Errorf("author = %+v", e.Author)
	}

	long := echoDisplay(strings.Repeat("ü", 6000), dg_helpers.Author{})
	if !strings.HasSuffix(long.Description, "```") || !utf8.ValidString(long.Description) {
		t.Error("long echo lost its closing fence")
	}
	if n := utf8.RuneCountInString(long.Description); n > dg_helpers.DescriptionLimit {
		t.Errorf("description has %d characters", n)
	}
}

func TestTranslationDisplay(t *testing.T) {
	tr := &translate.Translation{Original: "Bonjour", Text: "Hello", Source: "fr", Target: "en"}
	e := translationDisplay(tr, "Bonjour", dg_helpers.Author{Name: "someone"})

	if e.Title != "Translate" {
		t.Errorf("title = %q", e.Title)
	}
	if len(e.Fields) != 2 {
		t.Fatalf("got %d fields", len(e.Fields))
	}
	if e.Fields[0].Name != "Original <- FR" || e.Fields[0].Value != "```Bonjour```" {
		t.Errorf("first field = %+v", e.Fields[0])
	}
	if e.Fields[1].Name != "Translated -> EN" || e.Fields[1].Value != "```Hello```" {
		t.Errorf("second field = %+v", e.Fields[1])
	}

	// Fall back to the input when the backend does not echo it.
	e = translationDisplay(&translate.Translation{Text: "Hi", Source: "auto", Target: "de"}, "Salut", dg_helpers.Author{})
	if e.Fields[0].Value != "```Salut```" || e.Fields[1].Name != "Translated -> DE" {
		t.Errorf("fields = %+v, %+v", e.Fields[0], e.Fields[1])
	}
}

func TestEmptyMessageDisplay(t *testing.T) {
	e := emptyMessageDisplay()
	if e.Title != "Translate Error" || e.Description != "Message is empty" || e.Color != dg_helpers.ColorGray {
		t.Errorf("embed = %+v", e)
	}
}

func TestNothingToTranslate(t *testing.T) {
	tests := map[string]bool{
		"":            true,
		"   \n":       true,
		"👍":           true,
		"🎉 🎉":         true,
		"hola":        false,
		"👋 bonjour":   false,
		"```code```": false,
	}
	for in, want := range tests {
		if got := nothingToTranslate(in); got != want {
			t.Errorf("nothingToTranslate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
		ok   bool
	}{
		{"debug", log.DebugLevel, true},
		{" WARN ", log.WarnLevel, true},
		{"err", log.ErrorLevel, true},
		{"verbose", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLogLevel(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parseLogLevel(%q) = %v, %v", tt.in, got, ok)
		}
	}

	def := logLevelCommand()
	if len(def.Options[0].Choices) != len(log.AllLevels) {
		t.Errorf("got %d choices", len(def.Options[0].Choices))
	}
	for _, c := range def.Options[0].Choices {
		if _, ok := parseLogLevel(c.Value.(string)); !ok {
			t.Errorf("choice %q does not parse", c.Value)
		}
	}
}

func TestShouldIdle(t *testing.T) {
	now := time.Now()
	online := string(discordgo.StatusOnline)
	idle := string(discordgo.StatusIdle)

	tests := []struct {
		name       string
		status     string
		lastActive time.Time
		timeout    time.Duration
		want       bool
	}{
		{"recently active", online, now.Add(-time.Minute), 5 * time.Minute, false},
		{"inactive", online, now.Add(-10 * time.Minute), 5 * time.Minute, true},
		{"already idle", idle, now.Add(-10 * time.Minute), 5 * time.Minute, false},
		{"disabled", online, now.Add(-10 * time.Hour), 0, false},
	}
	for _, tt := range tests {
		if got := shouldIdle(tt.status, tt.lastActive, now, tt.timeout); got != tt.want {
			t.Errorf("%s: shouldIdle() = %v", tt.name, got)
		}
	}
}

func TestCodeBlockKeepsTranslationsInLimits(t *testing.T) {
	long := strings.Repeat("a", 5000)
	e := translationDisplay(&translate.Translation{Original: long, Text: long, Source: "en", Target: "fr"}, long, dg_helpers.Author{})
	for _, f := range e.Fields {
		if len(f.Value) > 1024 {
			t.Errorf("%s is %d bytes", f.Name, len(f.Value))
		}
	}
}

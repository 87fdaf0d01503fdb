package scripty

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/forPelevin/gomoji"

	"github.com/scripty-bot/scripty/scripty/dg_helpers"
	"github.com/scripty-bot/scripty/scripty/translate"
)

const (
	translateMenu = "Translate"

	translateCmd          = "translate"
	translateCmdOptText   = "text"
	translateCmdOptSource = "source"
	translateCmdOptTarget = "target"
)

func translateMenuCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Type: discordgo.MessageApplicationCommand,
		Name: translateMenu,
	}
}

func translateCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        translateCmd,
		Description: "Translate message to a specified language",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        translateCmdOptText,
				Description: "Text to translate",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        translateCmdOptSource,
				Description: fmt.Sprintf("Language to translate from (default: %s)", translate.AutoDetect),
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        translateCmdOptTarget,
				Description: "Language to translate to (default: en)",
			},
		},
	}
}

func translationDisplay(tr *translate.Translation, input string, author dg_helpers.Author) *discordgo.MessageEmbed {
	original := tr.Original
	if original == "" {
		original = input
	}
	return dg_helpers.NewDisplay("Translate", dg_helpers.ColorGray, author).
		Field("Original <- "+strings.ToUpper(tr.Source), dg_helpers.CodeBlock(original)).
		Field("Translated -> "+strings.ToUpper(tr.Target), dg_helpers.CodeBlock(tr.Text)).
		Embed()
}

func emptyMessageDisplay() *discordgo.MessageEmbed {
	return dg_helpers.NewDisplay("Translate Error", dg_helpers.ColorGray, dg_helpers.Author{}).
		Describe("Message is empty").
		Embed()
}

// nothingToTranslate reports whether content has no text once emojis and
// whitespace are removed.
func nothingToTranslate(content string) bool {
	return strings.TrimSpace(gomoji.RemoveEmojis(content)) == ""
}

// translateAndShow defers the response, translates text and edits the
// response with the result.
func translateAndShow(ctx context.Context, it *interaction, tl translate.Translator, text, source, target string, author dg_helpers.Author) error {
	if err := it.deferResponse(ctx); err != nil {
		return err
	}
	tr, err := tl.Translate(ctx, text, source, target)
	if err != nil {
		// The error listener replaces the "thinking" placeholder.
		var serr *translate.StatusError
		if errors.As(err, &serr) {
			return fmt.Errorf("translation backend unavailable: %w", err)
		}
		return err
	}
	return it.editResponse(ctx, translationDisplay(tr, text, author))
}

func handleTranslateMenu(ctx context.Context, it *interaction) error {
	data := it.i.ApplicationCommandData()
	if data.Resolved == nil {
		return errors.New("translate menu invoked without resolved data")
	}
	msg, ok := data.Resolved.Messages[data.TargetID]
	if !ok || msg == nil {
		return errors.New("could not resolve target message " + data.TargetID)
	}

	if nothingToTranslate(msg.Content) {
		return it.respondEmbed(ctx, emptyMessageDisplay())
	}
	return translateAndShow(ctx, it, bot().translator, msg.Content, translate.AutoDetect, bot().settings.Translate.DefaultTarget, identity(msg.Author))
}

func handleTranslateCmd(ctx context.Context, it *interaction) error {
	metadata, err := getInteractionMetaData(it.i)
	if err != nil {
		return err
	}

	text, source, target := "", translate.AutoDetect, bot().settings.Translate.DefaultTarget
	for _, opt := range it.i.ApplicationCommandData().Options {
		switch opt.Name {
		case translateCmdOptText:
			text = opt.StringValue()
		case translateCmdOptSource:
			source = strings.ToLower(strings.TrimSpace(opt.StringValue()))
		case translateCmdOptTarget:
			target = strings.ToLower(strings.TrimSpace(opt.StringValue()))
		}
	}
	if strings.TrimSpace(text) == "" {
		return newUserError("There is nothing to translate.")
	}
	return translateAndShow(ctx, it, bot().translator, text, source, target, metadata.Author)
}

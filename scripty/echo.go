package scripty

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/scripty-bot/scripty/scripty/dg_helpers"
)

const (
	echoCmd        = "echo"
	echoCmdOptText = "text"

	echoPermission = discordgo.PermissionManageMessages
)

func echoCommand() *discordgo.ApplicationCommand {
	perms := int64(echoPermission)
	return &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     echoCmd,
		Description:              "Repeats user input",
		DefaultMemberPermissions: &perms,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        echoCmdOptText,
				Description: "Text to repeat",
				Required:    true,
			},
		},
	}
}

func echoDisplay(text string, author dg_helpers.Author) *discordgo.MessageEmbed {
	return dg_helpers.NewDisplay("Echo", dg_helpers.ColorGray, author).
		Describe(dg_helpers.DescriptionCodeBlock(text)).
		Embed()
}

func handleEchoCmd(ctx context.Context, it *interaction) error {
	metadata, err := getInteractionMetaData(it.i)
	if err != nil {
		return err
	}
	// Guild admins can override DefaultMemberPermissions, so check again.
	if metadata.AuthorPermissions&echoPermission == 0 {
		return newUserError("You need the Manage Messages permission to use /%s.", echoCmd)
	}

	text := ""
	for _, opt := range it.i.ApplicationCommandData().Options {
		if opt.Name == echoCmdOptText {
			text = opt.StringValue()
		}
	}
	return it.respondEmbed(ctx, echoDisplay(text, metadata.Author))
}

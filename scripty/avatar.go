package scripty

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/scripty-bot/scripty/scripty/dg_helpers"
)

const avatarMenu = "Avatar"

func avatarMenuCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Type: discordgo.UserApplicationCommand,
		Name: avatarMenu,
	}
}

func avatarDisplay(u *discordgo.User) *discordgo.MessageEmbed {
	who := identity(u)
	return dg_helpers.NewDisplay("Avatar", dg_helpers.ColorGray, who).
		Image(who.IconURL).
		Embed()
}

func handleAvatarMenu(ctx context.Context, it *interaction) error {
	data := it.i.ApplicationCommandData()
	if data.Resolved == nil {
		return errors.New("avatar menu invoked without resolved data")
	}
	u, ok := data.Resolved.Users[data.TargetID]
	if !ok || u == nil {
		return errors.New("could not resolve target user " + data.TargetID)
	}
	return it.respondEmbed(ctx, avatarDisplay(u))
}

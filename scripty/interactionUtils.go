package scripty

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/scripty-bot/scripty/scripty/dg_helpers"
)

// interaction is a single InteractionCreate event being handled. It remembers
// whether the interaction has been acknowledged, so that later responses know
// to edit or follow up instead.
type interaction struct {
	s     *discordgo.Session
	i     *discordgo.InteractionCreate
	acked *atomic.Bool
	// deferred is set while a deferred response has not been edited yet.
	deferred *atomic.Bool
}

func newInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) *interaction {
	return &interaction{s: s, i: i, acked: atomic.NewBool(false), deferred: atomic.NewBool(false)}
}

func (it *interaction) acknowledged() bool {
	return it.acked.Load()
}

// delivery is how a late message reaches the invoker.
type delivery int

const (
	// deliverResponse answers an interaction nobody has acknowledged yet.
	deliverResponse delivery = iota
	// deliverFollowup adds a message after an existing response.
	deliverFollowup
	// deliverReplacingPlaceholder removes the "thinking" placeholder of a
	// deferred response, then follows up.
	deliverReplacingPlaceholder
)

func (it *interaction) delivery() delivery {
	switch {
	case it.deferred.Load():
		return deliverReplacingPlaceholder
	case it.acknowledged():
		return deliverFollowup
	default:
		return deliverResponse
	}
}

func (it *interaction) respond(ctx context.Context, resp *discordgo.InteractionResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := it.s.InteractionRespond(it.i.Interaction, resp, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	it.acked.Store(true)
	return nil
}

// respondEmbed responds with a single embed.
func (it *interaction) respondEmbed(ctx context.Context, embed *discordgo.MessageEmbed) error {
	return it.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// deferResponse acknowledges the interaction so that slow work can finish
// before editResponse is called.
func (it *interaction) deferResponse(ctx context.Context) error {
	err := it.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err == nil {
		it.deferred.Store(true)
	}
	return err
}

// editResponse replaces the original response with a single embed.
func (it *interaction) editResponse(ctx context.Context, embed *discordgo.MessageEmbed) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := it.s.InteractionResponseEdit(it.i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err == nil {
		it.deferred.Store(false)
	}
	return err
}

// deleteResponse removes the original response.
func (it *interaction) deleteResponse(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := it.s.InteractionResponseDelete(it.i.Interaction, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	it.deferred.Store(false)
	return nil
}

// originalResponse resolves the message created by the initial response.
func (it *interaction) originalResponse(ctx context.Context) (*discordgo.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return it.s.InteractionResponse(it.i.Interaction, discordgo.WithContext(ctx))
}

// followupEphemeral sends an ephemeral follow-up message.
func (it *interaction) followupEphemeral(ctx context.Context, params *discordgo.WebhookParams) error {
	params.Flags |= discordgo.MessageFlagsEphemeral
	_, err := it.s.FollowupMessageCreate(it.i.Interaction, false, params, discordgo.WithContext(ctx))
	return err
}

// userError is an error caused by the invoker rather than the bot. It is
// shown to the invoker and never reported to the owner.
type userError struct {
	err error
}

func (e *userError) Error() string { return e.err.Error() }

func (e *userError) Unwrap() error { return e.err }

func newUserError(format string, a ...any) error {
	return &userError{err: fmt.Errorf(format, a...)}
}

func asUserError(err error) error {
	if err == nil {
		return nil
	}
	return &userError{err: err}
}

func isUserError(err error) bool {
	var uerr *userError
	return errors.As(err, &uerr)
}

func authorIsOwner(i *discordgo.InteractionCreate) (bool, error) {
	if getOwnerID() == "" {
		return false, errors.New("owner ID is not set")
	}
	metadata, err := getInteractionMetaData(i)
	if err != nil {
		return false, err
	}
	return metadata.AuthorID == getOwnerID(), nil
}

type interactionMetaData struct {
	AuthorID          string
	AuthorUsername    string
	AuthorMention     string
	AuthorAvatarURL   string
	AuthorPermissions int64
	GuildID           string
	ChannelID         string
	InteractionID     string
	// Author is the invoker as shown in embeds.
	Author dg_helpers.Author
}

func getInteractionMetaData(i *discordgo.InteractionCreate) (*interactionMetaData, error) {
	if i == nil || i.Interaction == nil {
		return nil, errors.New("interaction is nil")
	}

	var (
		u     *discordgo.User
		perms int64
	)
	if i.Member != nil {
		if i.Member.User == nil {
			return nil, errors.New("member.user is nil")
		}
		u = i.Member.User
		perms = i.Member.Permissions
	} else if i.User != nil {
		u = i.User
		// Outside of a guild the invoker may do anything to their own DM.
		perms = discordgo.PermissionAll
	} else {
		return nil, errors.New("no metadata could be found")
	}

	return &interactionMetaData{
		AuthorID:          u.ID,
		AuthorUsername:    u.Username,
		AuthorMention:     u.Mention(),
		AuthorAvatarURL:   u.AvatarURL(""),
		AuthorPermissions: perms,
		GuildID:           i.GuildID,
		ChannelID:         i.ChannelID,
		InteractionID:     i.ID,
		Author:            identity(u),
	}, nil
}

// identity returns how u is shown as an embed author. Users without a custom
// avatar get Discord's default one.
func identity(u *discordgo.User) dg_helpers.Author {
	if u == nil {
		return dg_helpers.Author{}
	}
	name := u.Username
	// Migrated accounts have no discriminator.
	if u.Discriminator != "" && u.Discriminator != "0" {
		name = u.String()
	}
	return dg_helpers.Author{Name: name, IconURL: u.AvatarURL("")}
}

func logInteraction(i *discordgo.InteractionCreate, name string) *log.Entry {
	fields := log.Fields{"command": name, "interaction": i.ID}
	if md, err := getInteractionMetaData(i); err == nil {
		fields["user"] = md.AuthorID
		fields["guild"] = md.GuildID
	}
	return log.WithFields(fields)
}

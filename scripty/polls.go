package scripty

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/scripty-bot/scripty/scripty/poll"
)

const (
	pollCmd         = "poll"
	pollCmdOptTopic = "topic"
)

func pollCommand() *discordgo.ApplicationCommand {
	opts := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        pollCmdOptTopic,
			Description: "Topic of the poll",
			Required:    true,
		},
	}
	// Discord requires every required option to come before the optional
	// ones, which slot order already guarantees.
	for _, slot := range poll.Slots() {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        slot.OptionName(),
			Description: fmt.Sprintf("Option %s", slot),
			Required:    slot.Required(),
		})
	}
	return &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        pollCmd,
		Description: "Create a simple poll",
		Options:     opts,
	}
}

// pollFromOptions builds a poll from the options of a /poll invocation.
// Unknown options are ignored.
func pollFromOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, author poll.Identity) (*poll.Poll, error) {
	p := poll.New("", author)
	for _, opt := range opts {
		if opt.Name == pollCmdOptTopic {
			p.Topic = opt.StringValue()
			continue
		}
		slot, ok := poll.SlotForOption(opt.Name)
		if !ok {
			log.Warnf("Unknown poll option %q", opt.Name)
			continue
		}
		if err := p.Set(slot, opt.StringValue()); err != nil {
			return nil, err
		}
	}
	if err := p.Validate(); err != nil {
		return nil, asUserError(err)
	}
	return p, nil
}

// interactionPublisher publishes polls as the response to an interaction.
type interactionPublisher struct {
	it *interaction
}

func (ip interactionPublisher) Respond(ctx context.Context, embed *discordgo.MessageEmbed) error {
	return ip.it.respondEmbed(ctx, embed)
}

func (ip interactionPublisher) FetchInitialResponse(ctx context.Context) (*discordgo.Message, error) {
	return ip.it.originalResponse(ctx)
}

func (ip interactionPublisher) AttachMarker(ctx context.Context, msg *discordgo.Message, marker string) error {
	return ip.it.s.MessageReactionAdd(msg.ChannelID, msg.ID, marker, discordgo.WithContext(ctx))
}

func handlePollCmd(ctx context.Context, it *interaction) error {
	metadata, err := getInteractionMetaData(it.i)
	if err != nil {
		return err
	}

	p, err := pollFromOptions(it.i.ApplicationCommandData().Options, metadata.Author)
	if err != nil {
		return err
	}

	res, err := bot().polls.Run(ctx, interactionPublisher{it}, p)
	if err != nil {
		// Attach failures leave a partial poll; the error listener follows up.
		return fmt.Errorf("poll %q stopped in state %s: %w", p.Topic, res.State, err)
	}
	logInteraction(it.i, pollCmd).WithField("options", len(res.Attached)).Debug("Poll published")
	return nil
}

package scripty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	log "github.com/sirupsen/logrus"

	"github.com/scripty-bot/scripty/scripty/dg_helpers"
	"github.com/scripty-bot/scripty/scripty/poll"
)

const (
	selectMenuErrorReport = "select_error_report"

	errorTitle       = "Error"
	errorDescription = "This interaction failed"
)

type errReportSelectionValue struct {
	// UUID of the associated errorReport
	ErrUUID uuid.UUID `json:"error-uuid,omitempty"`
	// Should the errorReport be made anonymously?
	Anonymous bool `json:"anonymous,omitempty"`
}

func (ers errReportSelectionValue) MarshalToString() string {
	buf, err := json.Marshal(ers)
	if err != nil {
		log.Error(err)
	}
	return string(buf)
}

func (ers *errReportSelectionValue) UnmarshalFromString(ersStr string) error {
	return json.Unmarshal([]byte(ersStr), ers)
}

type errorReport struct {
	// UUID of this error report
	UUID uuid.UUID
	// The InteractionCreate event that caused the error
	InteractionCreate discordgo.InteractionCreate
	// The error that arose during the InteractionCreate event
	Err     error
	Created time.Time
}

// errorReports holds reports the invoker has not yet chosen to send. Reports
// older than ttl are dropped by purge.
type errorReports struct {
	m   cmap.ConcurrentMap[string, errorReport]
	ttl time.Duration
}

func newErrorReports(ttl time.Duration) *errorReports {
	return &errorReports{m: cmap.New[errorReport](), ttl: ttl}
}

func (r *errorReports) add(i *discordgo.InteractionCreate, err error, now time.Time) uuid.UUID {
	id := uuid.New()
	r.m.Set(id.String(), errorReport{
		UUID:              id,
		InteractionCreate: *i,
		Err:               err,
		Created:           now,
	})
	return id
}

func (r *errorReports) get(id uuid.UUID) (errorReport, bool) {
	return r.m.Get(id.String())
}

func (r *errorReports) remove(id uuid.UUID) {
	r.m.Remove(id.String())
}

func (r *errorReports) count() int {
	return r.m.Count()
}

// purge drops expired reports and returns how many were dropped. A ttl of
// zero keeps reports forever.
func (r *errorReports) purge(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	purged := 0
	for item := range r.m.IterBuffered() {
		if now.Sub(item.Val.Created) > r.ttl {
			r.m.Remove(item.Key)
			purged++
		}
	}
	return purged
}

// errorDisplay is what the invoker sees when their interaction fails.
func errorDisplay() *discordgo.MessageEmbed {
	return dg_helpers.NewDisplay(errorTitle, dg_helpers.ColorRed, dg_helpers.Author{}).
		Describe(errorDescription).
		Embed()
}

func errReportMsgComponents(errUUID uuid.UUID, ownerName string) []discordgo.MessageComponent {
	if ownerName == "" {
		ownerName = "the bot owner"
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    selectMenuErrorReport,
					Placeholder: "Would you like to send an error report?",
					Options: []discordgo.SelectMenuOption{
						{
							Label:       "Send Anonymous Error Report",
							Description: fmt.Sprintf("Send an anonymous error report to %s.", ownerName),
							Value:       errReportSelectionValue{errUUID, true}.MarshalToString(),
							Emoji:       &discordgo.ComponentEmoji{Name: "📮"},
						},
						{
							Label:       "Send Error Report",
							Description: fmt.Sprintf("Send an error report to %s.", ownerName),
							Value:       errReportSelectionValue{errUUID, false}.MarshalToString(),
							Emoji:       &discordgo.ComponentEmoji{Name: "🗳️"},
						},
					},
				},
			},
		},
	}
}

func ownerName(s *discordgo.Session) string {
	if getOwnerID() == "" {
		return ""
	}
	owner, err := s.User(getOwnerID())
	if err != nil {
		log.Error(err)
		return ""
	}
	return owner.Username
}

// onInteractionError is the error listener. Every handler error ends up
// here. User errors are shown to the invoker as-is; anything else is logged,
// the invoker sees a generic failure, and, if an owner is configured, is
// offered to send an error report.
func onInteractionError(ctx context.Context, it *interaction, name string, handlerErr error) {
	logger := logInteraction(it.i, name)

	// The handler's context may be spent; reporting gets a fresh one.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if isUserError(handlerErr) {
		logger.Debugf("User error: %v", handlerErr)
		if err := respondEphemeral(ctx, it, &discordgo.WebhookParams{Content: handlerErr.Error()}); err != nil {
			logger.Error(err)
		}
		return
	}

	var attachErr *poll.AttachError
	if errors.As(handlerErr, &attachErr) {
		logger.WithField("attached", len(attachErr.Attached)).Error(handlerErr)
	} else {
		logger.Error(handlerErr)
	}

	params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{errorDisplay()}}
	var errUUID uuid.UUID
	if getOwnerID() != "" {
		errUUID = bot().reports.add(it.i, handlerErr, time.Now())
		params.Components = errReportMsgComponents(errUUID, ownerName(it.s))
	}
	if err := respondEphemeral(ctx, it, params); err != nil {
		logger.Error(err)
		if errUUID != uuid.Nil {
			bot().reports.remove(errUUID)
		}
	}
}

// respondEphemeral responds with params, or follows up if the interaction was
// already acknowledged. A deferred response that was never filled in is
// deleted first so the invoker sees only the follow-up.
func respondEphemeral(ctx context.Context, it *interaction, params *discordgo.WebhookParams) error {
	switch it.delivery() {
	case deliverReplacingPlaceholder:
		if err := it.deleteResponse(ctx); err != nil {
			log.Warn(err)
		}
		return it.followupEphemeral(ctx, params)
	case deliverFollowup:
		return it.followupEphemeral(ctx, params)
	}
	return it.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    params.Content,
			Embeds:     params.Embeds,
			Components: params.Components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
}

func handleErrorReportSelection(ctx context.Context, it *interaction) error {
	data := it.i.MessageComponentData()
	if len(data.Values) == 0 {
		return errors.New("no values returned with component interaction data")
	}

	selection := errReportSelectionValue{}
	if err := selection.UnmarshalFromString(data.Values[0]); err != nil {
		return err
	}

	errReport, ok := bot().reports.get(selection.ErrUUID)
	if !ok {
		return newUserError("This error report has expired.")
	}

	if err := dmOwnerErrorReport(ctx, it.s, errReport, selection.Anonymous); err != nil {
		return err
	}

	buttonPrefix := ""
	if selection.Anonymous {
		buttonPrefix = "Anonymous "
	}
	err := it.respond(ctx, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{errorDisplay()},
			Flags:  discordgo.MessageFlagsEphemeral,
			// No good way to delete components from a message, so this will have to do for now.
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							CustomID: "no_handler",
							Label:    fmt.Sprintf("%sError Report Submitted", buttonPrefix),
							Style:    discordgo.SecondaryButton,
							Disabled: true,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return err
	}
	bot().reports.remove(selection.ErrUUID)
	return nil
}

func errorReportDisplay(errReport errorReport, anonymous bool) *discordgo.MessageEmbed {
	afflicted := "anonymous"
	if !anonymous {
		if md, err := getInteractionMetaData(&errReport.InteractionCreate); err == nil {
			afflicted = md.AuthorMention
		} else {
			afflicted = "unknown"
		}
	}

	var cmdJson []byte
	if errReport.InteractionCreate.Type == discordgo.InteractionApplicationCommand {
		var err error
		cmdJson, err = json.MarshalIndent(errReport.InteractionCreate.ApplicationCommandData(), "", "  ")
		if err != nil {
			log.Error(err)
			cmdJson = []byte(`{"error": "Error marshalling application command"}`)
		}
	}

	return dg_helpers.NewDisplay("Error Report", dg_helpers.ColorRed, dg_helpers.Author{}).
		Field("Afflicted User", afflicted).
		Field("Issued Command", fmt.Sprintf("```json\n%s\n```", cmdJson)).
		Field("Error", fmt.Sprintf("```\n%s\n```", errReport.Err)).
		Field("Reported", errReport.Created.Format(time.RFC1123)).
		Embed()
}

func dmOwnerErrorReport(ctx context.Context, s *discordgo.Session, errReport errorReport, anonymous bool) error {
	if s == nil {
		return errors.New("nil session provided")
	}
	uc, err := s.UserChannelCreate(getOwnerID(), discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = s.ChannelMessageSendComplex(uc.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{errorReportDisplay(errReport, anonymous)},
	}, discordgo.WithContext(ctx))
	return err
}

func purgeStaleErrorReports() {
	if n := bot().reports.purge(time.Now()); n > 0 {
		log.Debugf("Purged %d expired error reports", n)
	}
}

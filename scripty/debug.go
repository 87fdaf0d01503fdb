package scripty

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	logLevelCmd         = "loglevel"
	logLevelCmdOptLevel = "level"
)

var logLevelMap = map[string]log.Level{
	"panic":   log.PanicLevel,
	"fatal":   log.FatalLevel,
	"error":   log.ErrorLevel,
	"err":     log.ErrorLevel,
	"warning": log.WarnLevel,
	"warn":    log.WarnLevel,
	"info":    log.InfoLevel,
	"debug":   log.DebugLevel,
	"trace":   log.TraceLevel,
}

func logLevelCommand() *discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(log.AllLevels))
	for _, lvl := range log.AllLevels {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  lvl.String(),
			Value: lvl.String(),
		})
	}
	return &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        logLevelCmd,
		Description: "Update the log level of the bot. Only works for the bot owner.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        logLevelCmdOptLevel,
				Description: "The new log level",
				Required:    true,
				Choices:     choices,
			},
		},
	}
}

func parseLogLevel(s string) (log.Level, bool) {
	l, ok := logLevelMap[strings.ToLower(strings.TrimSpace(s))]
	return l, ok
}

func updateLogLevel(ctx context.Context, it *interaction) error {
	isOwner, err := authorIsOwner(it.i)
	if err != nil {
		return asUserError(err)
	}
	if !isOwner {
		md, _ := getInteractionMetaData(it.i)
		if md != nil {
			log.Warnf("User %s (%s) does not have privilege to update log level", md.AuthorUsername, md.AuthorID)
		}
		return newUserError("Only the bot owner can change the log level.")
	}

	levelStr := ""
	for _, opt := range it.i.ApplicationCommandData().Options {
		if opt.Name == logLevelCmdOptLevel {
			levelStr = opt.StringValue()
		}
	}
	l, ok := parseLogLevel(levelStr)
	if !ok {
		return newUserError("Invalid log level provided: %s", levelStr)
	}

	info := fmt.Sprintf(`Set logging level to "%s"`, l)
	log.Info(info)
	log.SetLevel(l)
	return respondEphemeral(ctx, it, &discordgo.WebhookParams{Content: info})
}

package scripty

import (
	"time"
	_ "time/tzdata"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	BotTokenEnv     = "SCRIPTY_TOKEN"
	BotOwnerEnv     = "SCRIPTY_OWNER_ID"
	TestbedGuildEnv = "SCRIPTY_TESTBED_GUILD"
	TimezoneEnv     = "TZ"
	Intents         = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions | discordgo.IntentsDirectMessages
)

type environment struct {
	Token        string `env:"SCRIPTY_TOKEN,required,notEmpty"`
	OwnerID      string `env:"SCRIPTY_OWNER_ID"`
	TestbedGuild string `env:"SCRIPTY_TESTBED_GUILD"`
	Timezone     string `env:"TZ"`
}

var (
	getBotToken     = func() string { return "" }
	getOwnerID      = func() string { return "" }
	getTestbedGuild = func() string { return "" }
)

// loadEnv reads the bot's secrets from the environment.
func loadEnv() error {
	// This will only add new environment variables,
	// and will NOT overwrite existing ones.
	_ = godotenv.Load( /*.env by default*/ )

	var e environment
	if err := env.Parse(&e); err != nil {
		return err
	}

	getBotToken = func() string { return e.Token }

	if e.OwnerID == "" {
		log.Warnf("%s not set. No commands requiring this privilege can be executed, and error reports cannot be sent.", BotOwnerEnv)
	}
	getOwnerID = func() string { return e.OwnerID }

	if e.TestbedGuild == "" {
		log.Infof("%s not set. Commands will be registered globally.", TestbedGuildEnv)
	}
	getTestbedGuild = func() string { return e.TestbedGuild }

	if e.Timezone != "" {
		loc, err := time.LoadLocation(e.Timezone)
		if err != nil {
			log.Error(err)
		} else {
			time.Local = loc
		}
	}
	log.Infof("Using timezone: %s", time.Local)
	return nil
}

package scripty

import (
	"fmt"
	"time"

	"github.com/scripty-bot/scripty/scripty/config"
	"github.com/scripty-bot/scripty/scripty/poll"
)

// MainConfigFile is where the bot's behaviour is configured.
const MainConfigFile = "config/setup.json"

type botSettings struct {
	ListeningStatus           string `json:"listening-status"`
	InteractionTimeoutSeconds int    `json:"interaction-timeout-seconds"`
	IdleTimeoutMinutes        int    `json:"idle-timeout-minutes"`
	ErrorReportTTLMinutes     int    `json:"error-report-ttl-minutes"`
}

type pollSettings struct {
	FetchPolicy string `json:"fetch-policy"`
}

type translateSettings struct {
	Endpoint          string  `json:"endpoint"`
	RequestsPerSecond float64 `json:"requests-per-second"`
	DefaultTarget     string  `json:"default-target"`
}

// settings is everything the bot reads from MainConfigFile.
type settings struct {
	Bot       botSettings
	Poll      pollSettings
	Translate translateSettings

	fetchPolicy poll.FetchPolicy
}

func defaultSettings() settings {
	return settings{
		Bot: botSettings{
			ListeningStatus:           "/poll",
			InteractionTimeoutSeconds: 30,
			IdleTimeoutMinutes:        5,
			ErrorReportTTLMinutes:     60,
		},
		Translate: translateSettings{
			RequestsPerSecond: 2,
			DefaultTarget:     "en",
		},
	}
}

// loadSettings reads the bot, poll and translate sections of the config at
// path. Missing sections and keys keep their defaults.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()

	cfg, err := config.NewJsonConfig(path)
	if err != nil {
		return s, err
	}
	sections := map[string]any{
		"bot":       &s.Bot,
		"poll":      &s.Poll,
		"translate": &s.Translate,
	}
	for key, v := range sections {
		if err := cfg.Section(key, v); err != nil {
			return s, err
		}
	}

	s.fetchPolicy, err = poll.ParseFetchPolicy(s.Poll.FetchPolicy)
	if err != nil {
		return s, err
	}
	if s.Bot.InteractionTimeoutSeconds <= 0 {
		return s, fmt.Errorf("interaction-timeout-seconds must be positive, got %d", s.Bot.InteractionTimeoutSeconds)
	}
	if s.Translate.DefaultTarget == "" {
		s.Translate.DefaultTarget = "en"
	}
	return s, nil
}

func (s settings) interactionTimeout() time.Duration {
	return time.Duration(s.Bot.InteractionTimeoutSeconds) * time.Second
}

func (s settings) idleTimeout() time.Duration {
	return time.Duration(s.Bot.IdleTimeoutMinutes) * time.Minute
}

func (s settings) errorReportTTL() time.Duration {
	return time.Duration(s.Bot.ErrorReportTTLMinutes) * time.Minute
}

// Package scripty is a Discord bot offering polls, translation, avatars and
// an echo command through application commands.
package scripty

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/scripty-bot/scripty/scripty/poll"
	"github.com/scripty-bot/scripty/scripty/translate"
)

// Pointer to the single bot instance global to the package
var gbot *scripty = nil

type scripty struct {
	Session    *discordgo.Session
	settings   settings
	commands   commandTable
	translator translate.Translator
	polls      poll.Workflow
	reports    *errorReports

	status     *atomic.String
	lastActive *atomic.Time
}

// bot() is a getter for the global bot instance
func bot() *scripty {
	if gbot == nil {
		// The only time gbot should be nil is if Run() has not been called.
		// If Run() has not been called, no bot code should be running and
		// this case should not be hit.
		log.Fatal("No bot initialized. This should never happen.")
	}
	return gbot
}

// Run initializes and starts the bot using the config file at cfgPath.
func Run(cfgPath string) error {
	if err := initialize(cfgPath); err != nil {
		return err
	}
	log.Print("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// RunAndBlock runs the bot, blocks until a terminating signal is received,
// then stops the bot.
func RunAndBlock(cfgPath string) error {
	if err := Run(cfgPath); err != nil {
		return err
	}
	BlockThenStop()
	return nil
}

// Block the current goroutine until a terminating signal is received
func Block() {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}

// BlockThenStop blocks the current goroutine until a terminating signal is received.
// When the signal is received, stop and clean up the bot.
func BlockThenStop() {
	Block()
	Stop()
}

// Stop and clean up.
func Stop() {
	if s := scheduler(); s != nil {
		s.Stop()
	}
	if err := bot().Session.Close(); err != nil {
		log.Error(err)
	}
}

// Initialize the single global bot instance
func initialize(cfgPath string) error {
	if err := loadEnv(); err != nil {
		return err
	}
	cfg, err := loadSettings(cfgPath)
	if err != nil {
		return err
	}

	dgs, err := discordgo.New("Bot " + getBotToken())
	if err != nil {
		return err
	}
	if dgs == nil {
		return errors.New("failed to create discordgo session")
	}

	gbot = &scripty{
		Session:    dgs,
		settings:   cfg,
		commands:   getCommands(),
		translator: translate.NewClient(cfg.Translate.Endpoint, cfg.Translate.RequestsPerSecond, nil),
		polls:      poll.Workflow{Fetch: cfg.fetchPolicy},
		reports:    newErrorReports(cfg.errorReportTTL()),
		status:     atomic.NewString(string(discordgo.StatusOnline)),
		lastActive: atomic.NewTime(time.Now()),
	}

	configure()
	addHandlers()

	if err = bot().Session.Open(); err != nil {
		return err
	}
	if err = registerCommands(bot().Session, bot().commands); err != nil {
		return err
	}

	startScheduler(cfg)
	return nil
}

func configure() {
	bot().Session.Identify.Intents = Intents
	bot().Session.SyncEvents = false
	bot().Session.ShouldReconnectOnError = true
	bot().Session.StateEnabled = true
}

func addHandlers() {
	// OnReady handlers
	for _, h := range onReadyHandlers {
		bot().Session.AddHandler(h.handler)
	}

	bot().Session.AddHandler(onInteractionCreate)

	// Add handlers for any other event type here
}

// updateLastActive records activity and, if the bot went idle, brings it
// back online in the background. Wait on the returned WaitGroup before
// the handler returns.
func (b *scripty) updateLastActive() *sync.WaitGroup {
	b.lastActive.Store(time.Now())

	wg := &sync.WaitGroup{}
	if b.status.Load() == string(discordgo.StatusOnline) {
		return wg
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := b.Session.UpdateListeningStatus(b.settings.Bot.ListeningStatus)
		if err != nil {
			log.Error(err)
			return
		}
		b.status.Store(string(discordgo.StatusOnline))
		log.Infof("Set bot status to %s", b.status.Load())
	}()
	return wg
}

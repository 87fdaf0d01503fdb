package scripty

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-co-op/gocron"

	log "github.com/sirupsen/logrus"
)

var scheduler = func() *gocron.Scheduler { return nil }

// startScheduler registers the bot's periodic jobs and starts running them
// in the background.
func startScheduler(cfg settings) {
	s := gocron.NewScheduler(time.Local)
	scheduler = func() *gocron.Scheduler { return s }

	// https://crontab.guru/#*_*_*_*_*
	if _, err := scheduler().Cron("* * * * *").Do(setStatus); err != nil {
		log.Error(err)
	}

	if cfg.errorReportTTL() > 0 {
		if _, err := scheduler().Every(cfg.errorReportTTL() / 2).Do(purgeStaleErrorReports); err != nil {
			log.Error(err)
		}
	}

	scheduler().StartAsync()
}

// setStatus marks the bot idle once no interaction has arrived for the
// configured idle timeout.
func setStatus() {
	if !shouldIdle(bot().status.Load(), bot().lastActive.Load(), time.Now(), bot().settings.idleTimeout()) {
		return
	}

	err := bot().Session.UpdateListeningStatus("")
	if err != nil {
		log.Error(err)
	}

	idleSince := int(time.Now().Local().UnixMilli())
	err = bot().Session.UpdateStatusComplex(discordgo.UpdateStatusData{
		IdleSince: &idleSince,
		AFK:       true,
		Status:    string(discordgo.StatusIdle),
	})
	if err != nil {
		log.Error(err)
	} else {
		bot().status.Store(string(discordgo.StatusIdle))
		log.Infof("Set bot status to %s", bot().status.Load())
	}
}

func shouldIdle(status string, lastActive, now time.Time, timeout time.Duration) bool {
	return timeout > 0 && status != string(discordgo.StatusIdle) && now.Sub(lastActive) > timeout
}

package scripty

import (
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type onReadyHandlerf = func(*discordgo.Session, *discordgo.Ready)

type onReadyHandler struct {
	handler onReadyHandlerf
	help    string
}

// Any callbacks that happen onReady belong in this list.
// These callbacks must be able to safely execute asynchronously.
var onReadyHandlers = [...]onReadyHandler{
	{onReady, "Updates \"Listening Status\""},
}

func onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Infof("Logged in as %s", r.User)
	if err := s.UpdateListeningStatus(bot().settings.Bot.ListeningStatus); err != nil {
		log.Error(err)
		return
	}
	bot().status.Store(string(discordgo.StatusOnline))
}

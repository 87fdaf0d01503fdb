package scripty

import (
	"regexp"

	log "github.com/sirupsen/logrus"
)

// See https://discord.com/developers/docs/interactions/application-commands#application-command-object
var validCommandRegex = func() *regexp.Regexp { return nil }

func init() {
	r := regexp.MustCompile(`^[-_\p{Ll}\p{N}]{1,32}$`)
	if r == nil {
		log.Fatal("Could not compile validCommandRegex")
	}

	validCommandRegex = func() *regexp.Regexp { return r }
}

package settings

import (
	"veilbot/application"

	"github.com/bwmarrin/discordgo"
)

// Feature handles guild settings management
type Feature struct {
	uowFactory application.UnitOfWorkFactory
}

// NewFeature creates a new settings feature instance
func NewFeature(uowFactory application.UnitOfWorkFactory) *Feature {
	return &Feature{
		uowFactory: uowFactory,
	}
}

// HandleCommand routes /veilsettings subcommands to their handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "maxguess":
		f.handleMaxGuess(s, i, options[0].Options)
	case "channel":
		f.handleVeilChannel(s, i, options[0].Options)
	case "adminlog":
		f.handleAdminLog(s, i, options[0].Options)
	case "show":
		f.handleShow(s, i)
	}
}

package scripty

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type commandHandler func(ctx context.Context, it *interaction) error

type command struct {
	Definition *discordgo.ApplicationCommand
	Handler    commandHandler
}

// Slash commands and context menus may share a name, so commands are keyed
// by both.
type commandKey struct {
	Type discordgo.ApplicationCommandType
	Name string
}

func (k commandKey) String() string {
	switch k.Type {
	case discordgo.UserApplicationCommand:
		return fmt.Sprintf("%s (user menu)", k.Name)
	case discordgo.MessageApplicationCommand:
		return fmt.Sprintf("%s (message menu)", k.Name)
	default:
		return "/" + k.Name
	}
}

type commandTable map[commandKey]command

func keyOf(def *discordgo.ApplicationCommand) commandKey {
	t := def.Type
	if t == 0 {
		t = discordgo.ChatApplicationCommand
	}
	return commandKey{Type: t, Name: def.Name}
}

func newCommandTable(cmds ...command) (commandTable, error) {
	table := make(commandTable, len(cmds))
	for _, cmd := range cmds {
		if cmd.Definition == nil || cmd.Handler == nil {
			return nil, fmt.Errorf("command is missing a definition or handler: %+v", cmd)
		}
		k := keyOf(cmd.Definition)
		if k.Type == discordgo.ChatApplicationCommand && !validCommandRegex().MatchString(k.Name) {
			return nil, fmt.Errorf("invalid command name %q", k.Name)
		}
		if _, dup := table[k]; dup {
			return nil, fmt.Errorf("duplicate command %s", k)
		}
		table[k] = cmd
	}
	return table, nil
}

func (t commandTable) lookup(ct discordgo.ApplicationCommandType, name string) (command, bool) {
	cmd, ok := t[commandKey{Type: ct, Name: name}]
	return cmd, ok
}

// Definitions returns the command definitions in a stable order.
func (t commandTable) Definitions() []*discordgo.ApplicationCommand {
	keys := make([]commandKey, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Name < keys[j].Name
	})
	defs := make([]*discordgo.ApplicationCommand, 0, len(keys))
	for _, k := range keys {
		defs = append(defs, t[k].Definition)
	}
	return defs
}

func getCommands() commandTable {
	table, err := newCommandTable(
		command{pollCommand(), handlePollCmd},
		command{translateCommand(), handleTranslateCmd},
		command{translateMenuCommand(), handleTranslateMenu},
		command{echoCommand(), handleEchoCmd},
		command{avatarMenuCommand(), handleAvatarMenu},
		command{logLevelCommand(), updateLogLevel},
	)
	if err != nil {
		// The table is static, so this is a programming error.
		log.Fatal(err)
	}
	return table
}

// CommandDefinitions returns every application command the bot registers.
func CommandDefinitions() []*discordgo.ApplicationCommand {
	return getCommands().Definitions()
}

// DescribeCommands renders the command table for humans, one line per command.
func DescribeCommands() string {
	sb := strings.Builder{}
	for _, def := range CommandDefinitions() {
		fmt.Fprintf(&sb, "%-28s %s\n", keyOf(def), def.Description)
		for _, opt := range def.Options {
			req := ""
			if opt.Required {
				req = " (required)"
			}
			fmt.Fprintf(&sb, "    %-24s %s%s\n", opt.Name, opt.Description, req)
		}
	}
	return sb.String()
}

// Component interactions are routed by custom ID.
var componentHandlers = map[string]commandHandler{
	selectMenuErrorReport: handleErrorReportSelection,
}

func registerCommands(s *discordgo.Session, table commandTable) error {
	guild := getTestbedGuild()
	defs := table.Definitions()
	for _, def := range defs {
		log.Debugf("Registering cmd: %s", keyOf(def))
	}
	created, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guild, defs)
	if err != nil {
		return fmt.Errorf("could not register commands: %w", err)
	}
	log.Infof("Registered %d commands", len(created))
	return nil
}

func onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	wg := bot().updateLastActive()
	defer wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), bot().settings.interactionTimeout())
	defer cancel()
	dispatch(ctx, bot().commands, newInteraction(s, i))
}

func dispatch(ctx context.Context, table commandTable, it *interaction) {
	var (
		name    string
		handler commandHandler
	)
	switch it.i.Type {
	case discordgo.InteractionApplicationCommand:
		data := it.i.ApplicationCommandData()
		name = data.Name
		cmd, ok := table.lookup(data.CommandType, data.Name)
		if !ok {
			log.Warnf("No handler registered for command %s", commandKey{data.CommandType, data.Name})
			return
		}
		handler = cmd.Handler
	case discordgo.InteractionMessageComponent:
		name = it.i.MessageComponentData().CustomID
		h, ok := componentHandlers[name]
		if !ok {
			log.Tracef("No handler registered for component %q", name)
			return
		}
		handler = h
	default:
		return
	}

	logInteraction(it.i, name).Debug("Handling interaction")
	if err := handler(ctx, it); err != nil {
		onInteractionError(ctx, it, name, err)
	}
}

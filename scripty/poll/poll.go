// Package poll implements reaction polls: a topic, up to ten lettered options,
// and the workflow that publishes the poll and attaches one marker per option.
package poll

import (
	"errors"
	"fmt"
	"strings"

	"github.com/scripty-bot/scripty/scripty/dg_helpers"
)

// Slot is one of the fixed option positions of a poll, A through J.
type Slot int

const (
	SlotA Slot = iota
	SlotB
	SlotC
	SlotD
	SlotE
	SlotF
	SlotG
	SlotH
	SlotI
	SlotJ

	// SlotCount is the maximum number of options a poll can hold.
	SlotCount = int(SlotJ) + 1

	// RequiredSlots is how many leading slots must be filled.
	RequiredSlots = 2
)

// Regional indicator symbols A..J, indexed by Slot.
var markers = [SlotCount]string{
	"\U0001f1e6",
	"\U0001f1e7",
	"\U0001f1e8",
	"\U0001f1e9",
	"\U0001f1ea",
	"\U0001f1eb",
	"\U0001f1ec",
	"\U0001f1ed",
	"\U0001f1ee",
	"\U0001f1ef",
}

// Slots returns every slot in declaration order.
func Slots() []Slot {
	slots := make([]Slot, SlotCount)
	for i := range slots {
		slots[i] = Slot(i)
	}
	return slots
}

func (s Slot) Valid() bool {
	return s >= SlotA && s <= SlotJ
}

// Marker returns the reaction emoji bound to the slot.
func (s Slot) Marker() string {
	if !s.Valid() {
		return ""
	}
	return markers[s]
}

// Letter returns the lower case letter of the slot, e.g. "a".
func (s Slot) Letter() string {
	if !s.Valid() {
		return "?"
	}
	return string(rune('a' + int(s)))
}

// OptionName is the slash command option name for the slot, e.g. "option_a".
func (s Slot) OptionName() string {
	return "option_" + s.Letter()
}

// Required reports whether the slot must be present on every poll.
func (s Slot) Required() bool {
	return s.Valid() && int(s) < RequiredSlots
}

func (s Slot) String() string {
	return strings.ToUpper(s.Letter())
}

// SlotForOption maps a slash command option name back to its slot.
func SlotForOption(name string) (Slot, bool) {
	if !strings.HasPrefix(name, "option_") || len(name) != len("option_a") {
		return 0, false
	}
	s := Slot(name[len(name)-1] - 'a')
	return s, s.Valid()
}

var (
	ErrEmptyTopic    = errors.New("a poll needs a topic")
	ErrMissingOption = errors.New("a poll needs at least options A and B")
	ErrInvalidSlot   = errors.New("invalid poll slot")
	ErrTopicTooLong  = fmt.Errorf("a poll topic can be at most %d characters", dg_helpers.TitleLimit)
	ErrBodyTooLong   = fmt.Errorf("a poll's options can be at most %d characters together", dg_helpers.DescriptionLimit)
)

// Identity is who created the poll.
type Identity = dg_helpers.Author

// Option is a present poll entry.
type Option struct {
	Slot Slot
	Text string
}

// Marker returns the option's reaction emoji.
func (o Option) Marker() string {
	return o.Slot.Marker()
}

func (o Option) String() string {
	return fmt.Sprintf("%s %s", o.Marker(), o.Text)
}

type entry struct {
	text    string
	present bool
}

// Poll is a single invocation's poll. It is built, published and discarded.
type Poll struct {
	Topic  string
	Author Identity

	entries [SlotCount]entry
}

// New returns an empty poll.
func New(topic string, author Identity) *Poll {
	return &Poll{Topic: topic, Author: author}
}

// Set fills a slot. Setting an already present slot replaces its text.
func (p *Poll) Set(slot Slot, text string) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, int(slot))
	}
	p.entries[slot] = entry{text: text, present: true}
	return nil
}

// Clear marks a slot as absent.
func (p *Poll) Clear(slot Slot) {
	if slot.Valid() {
		p.entries[slot] = entry{}
	}
}

// Get returns a slot's text and whether it is present.
func (p *Poll) Get(slot Slot) (string, bool) {
	if !slot.Valid() {
		return "", false
	}
	e := p.entries[slot]
	return e.text, e.present
}

// Options returns the present options in slot order. Absent slots are
// skipped, never compacted: an option keeps its own slot and marker.
func (p *Poll) Options() []Option {
	opts := make([]Option, 0, SlotCount)
	for i, e := range p.entries {
		if !e.present {
			continue
		}
		opts = append(opts, Option{Slot: Slot(i), Text: e.text})
	}
	return opts
}

// Validate checks what the command boundary must guarantee before the poll
// is handed to a Workflow. A valid poll renders without truncation, so its
// display always lists every option that gets a marker.
func (p *Poll) Validate() error {
	if strings.TrimSpace(p.Topic) == "" {
		return ErrEmptyTopic
	}
	if !dg_helpers.FitsTitle(p.Topic) {
		return ErrTopicTooLong
	}
	for _, s := range Slots() {
		if !s.Required() {
			break
		}
		if _, ok := p.Get(s); !ok {
			return fmt.Errorf("%w (option %s is missing)", ErrMissingOption, s)
		}
	}
	if !dg_helpers.FitsDescription(p.Body()) {
		return ErrBodyTooLong
	}
	return nil
}

// Body renders the present options, one "<marker> <text>" per option,
// separated by blank lines.
func (p *Poll) Body() string {
	opts := p.Options()
	lines := make([]string, len(opts))
	for i, o := range opts {
		lines[i] = o.String()
	}
	return strings.Join(lines, "\n\n")
}

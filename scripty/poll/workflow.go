package poll

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/scripty-bot/scripty/scripty/dg_helpers"
)

// Publisher is the response channel a poll is published through.
type Publisher interface {
	// Respond publishes the poll's display object.
	Respond(ctx context.Context, embed *discordgo.MessageEmbed) error
	// FetchInitialResponse resolves the message created by Respond.
	FetchInitialResponse(ctx context.Context) (*discordgo.Message, error)
	// AttachMarker adds a reaction to a published message.
	AttachMarker(ctx context.Context, msg *discordgo.Message, marker string) error
}

// FetchPolicy controls how often the published message is resolved while
// markers are attached.
type FetchPolicy int

const (
	// FetchOnce resolves the published message once and reuses it for
	// every attachment.
	FetchOnce FetchPolicy = iota
	// FetchEachAttach resolves the published message again before every
	// attachment.
	FetchEachAttach
)

func (f FetchPolicy) String() string {
	switch f {
	case FetchOnce:
		return "once"
	case FetchEachAttach:
		return "each-attach"
	default:
		return fmt.Sprintf("FetchPolicy(%d)", int(f))
	}
}

// ParseFetchPolicy parses the config representation of a FetchPolicy.
// The empty string selects FetchOnce.
func ParseFetchPolicy(s string) (FetchPolicy, error) {
	switch s {
	case "", "once":
		return FetchOnce, nil
	case "each-attach":
		return FetchEachAttach, nil
	default:
		return FetchOnce, fmt.Errorf("unknown poll fetch policy %q", s)
	}
}

// State is where a workflow run is, or where it stopped.
type State int

const (
	StateBuilding State = iota
	StatePublished
	StateAttaching
	StateDone
	// StatePartiallyAttached is terminal: some markers may be attached and
	// the rest never will be.
	StatePartiallyAttached
	// StatePublishFailed is terminal: nothing was published.
	StatePublishFailed
)

var stateNames = map[State]string{
	StateBuilding:          "building",
	StatePublished:         "published",
	StateAttaching:         "attaching",
	StateDone:              "done",
	StatePartiallyAttached: "partially-attached",
	StatePublishFailed:     "publish-failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether a run in this state has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StatePartiallyAttached || s == StatePublishFailed
}

// Result describes how far a run got.
type Result struct {
	State State
	// Attached lists the slots whose marker was attached, in order.
	Attached []Slot
	// Message is the published message, if it was resolved.
	Message *discordgo.Message
}

// PublishError means the poll itself could not be published.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("could not publish poll: %v", e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// AttachError means the run stopped while attaching markers. Markers for the
// slots in Attached stay on the message; they are not removed.
type AttachError struct {
	Slot     Slot
	Marker   string
	Attached []Slot
	Err      error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("could not attach marker %s for option %s (%d attached before failure): %v", e.Marker, e.Slot, len(e.Attached), e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

var errNilMessage = errors.New("initial response resolved to a nil message")

// Workflow publishes polls. The zero value uses FetchOnce.
type Workflow struct {
	Fetch FetchPolicy
}

// Display builds the poll's display object.
func (w Workflow) Display(p *Poll) *discordgo.MessageEmbed {
	return dg_helpers.NewDisplay(p.Topic, dg_helpers.ColorGray, p.Author).
		Describe(p.Body()).
		Embed()
}

// Run publishes p and attaches one marker per present option, in slot order.
// Calls to pub are strictly sequential. A failure stops the run: nothing is
// retried and nothing already attached is removed. The caller is expected
// to have validated p.
func (w Workflow) Run(ctx context.Context, pub Publisher, p *Poll) (Result, error) {
	res := Result{State: StateBuilding}
	opts := p.Options()
	logger := log.WithFields(log.Fields{
		"topic":   p.Topic,
		"options": len(opts),
		"fetch":   w.Fetch,
	})

	if err := ctx.Err(); err != nil {
		res.State = StatePublishFailed
		return res, &PublishError{Err: err}
	}
	if err := pub.Respond(ctx, w.Display(p)); err != nil {
		res.State = StatePublishFailed
		return res, &PublishError{Err: err}
	}
	res.State = StatePublished
	logger.Trace("Published poll")

	fail := func(o Option, err error) (Result, error) {
		res.State = StatePartiallyAttached
		attached := append([]Slot(nil), res.Attached...)
		logger.WithField("attached", len(attached)).Warnf("Stopped attaching poll markers at option %s: %v", o.Slot, err)
		return res, &AttachError{Slot: o.Slot, Marker: o.Marker(), Attached: attached, Err: err}
	}

	for _, o := range opts {
		res.State = StateAttaching
		if err := ctx.Err(); err != nil {
			return fail(o, err)
		}

		if res.Message == nil || w.Fetch == FetchEachAttach {
			msg, err := pub.FetchInitialResponse(ctx)
			if err == nil && msg == nil {
				err = errNilMessage
			}
			if err != nil {
				return fail(o, fmt.Errorf("fetching initial response: %w", err))
			}
			res.Message = msg
		}

		if err := pub.AttachMarker(ctx, res.Message, o.Marker()); err != nil {
			return fail(o, err)
		}
		res.Attached = append(res.Attached, o.Slot)
	}

	res.State = StateDone
	logger.Debug("Poll published with all markers attached")
	return res, nil
}

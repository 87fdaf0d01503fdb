package poll

import (
	"errors"
	"strings"
	"testing"
)

func newPoll(t *testing.T, topic string, texts map[Slot]string) *Poll {
	t.Helper()
	p := New(topic, Identity{Name: "tester#0001", IconURL: "https://cdn.example/avatar.png"})
	for s, text := range texts {
		if err := p.Set(s, text); err != nil {
			t.Fatalf("Set(%s): %v", s, err)
		}
	}
	return p
}

func TestSlotMarkers(t *testing.T) {
	want := []string{"🇦", "🇧", "🇨", "🇩", "🇪", "🇫", "🇬", "🇭", "🇮", "🇯"}
	slots := Slots()
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d", len(slots), len(want))
	}
	seen := map[string]bool{}
	for i, s := range slots {
		if s.Marker() != want[i] {
			t.Errorf("slot %s marker = %q, want %q", s, s.Marker(), want[i])
		}
		if seen[s.Marker()] {
			t.Errorf("marker %q bound to more than one slot", s.Marker())
		}
		seen[s.Marker()] = true
	}
	if Slot(SlotCount).Marker() != "" {
		t.Error("out of range slot should have no marker")
	}
}

func TestSlotOptionNames(t *testing.T) {
	tests := []struct {
		slot     Slot
		name     string
		required bool
	}{
		{SlotA, "option_a", true},
		{SlotB, "option_b", true},
		{SlotC, "option_c", false},
		{SlotJ, "option_j", false},
	}
	for _, tt := range tests {
		if got := tt.slot.OptionName(); got != tt.name {
			t.Errorf("%s.OptionName() = %q, want %q", tt.slot, got, tt.name)
		}
		if got := tt.slot.Required(); got != tt.required {
			t.Errorf("%s.Required() = %v, want %v", tt.slot, got, tt.required)
		}
		s, ok := SlotForOption(tt.name)
		if !ok || s != tt.slot {
			t.Errorf("SlotForOption(%q) = %v, %v; want %v, true", tt.name, s, ok, tt.slot)
		}
	}

	for _, name := range []string{"topic", "option_k", "option_", "option_ab", "option_A"} {
		if _, ok := SlotForOption(name); ok {
			t.Errorf("SlotForOption(%q) should not match", name)
		}
	}
}

func TestBodyExample(t *testing.T) {
	p := newPoll(t, "Lunch?", map[Slot]string{
		SlotA: "Pizza",
		SlotB: "Sushi",
		SlotC: "Tacos",
	})
	want := "🇦 Pizza\n\n🇧 Sushi\n\n🇨 Tacos"
	if got := p.Body(); got != want {
		t.Errorf("Body() = %q, want %q", got, want)
	}
}

func TestBodySkipsAbsentSlots(t *testing.T) {
	tests := []struct {
		name  string
		texts map[Slot]string
		want  []string
	}{
		{
			name:  "required only",
			texts: map[Slot]string{SlotA: "yes", SlotB: "no"},
			want:  []string{"🇦 yes", "🇧 no"},
		},
		{
			name:  "gaps keep their markers",
			texts: map[Slot]string{SlotA: "a", SlotB: "b", SlotD: "d", SlotJ: "j"},
			want:  []string{"🇦 a", "🇧 b", "🇩 d", "🇯 j"},
		},
		{
			name: "all ten",
			texts: map[Slot]string{
				SlotA: "1", SlotB: "2", SlotC: "3", SlotD: "4", SlotE: "5",
				SlotF: "6", SlotG: "7", SlotH: "8", SlotI: "9", SlotJ: "10",
			},
			want: []string{"🇦 1", "🇧 2", "🇨 3", "🇩 4", "🇪 5", "🇫 6", "🇬 7", "🇭 8", "🇮 9", "🇯 10"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPoll(t, "topic", tt.texts)
			lines := strings.Split(p.Body(), "\n\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d lines (%q), want %d", len(lines), p.Body(), len(tt.want))
			}
			for i := range lines {
				if lines[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, lines[i], tt.want[i])
				}
			}
		})
	}
}

func TestEverySubsetKeepsOrder(t *testing.T) {
	// Walk every present/absent combination of the optional slots.
	optional := Slots()[RequiredSlots:]
	for mask := 0; mask < 1<<len(optional); mask++ {
		texts := map[Slot]string{SlotA: "A", SlotB: "B"}
		for i, s := range optional {
			if mask&(1<<i) != 0 {
				texts[s] = s.String()
			}
		}
		p := newPoll(t, "topic", texts)

		opts := p.Options()
		if len(opts) != len(texts) {
			t.Fatalf("mask %b: got %d options, want %d", mask, len(opts), len(texts))
		}
		for i := 1; i < len(opts); i++ {
			if opts[i-1].Slot >= opts[i].Slot {
				t.Fatalf("mask %b: options out of order: %v", mask, opts)
			}
		}
		for _, o := range opts {
			if o.Text != o.Slot.String() {
				t.Fatalf("mask %b: slot %s carries text %q", mask, o.Slot, o.Text)
			}
		}
	}
}

func TestEmptyTextIsPresent(t *testing.T) {
	p := newPoll(t, "topic", map[Slot]string{SlotA: "a", SlotB: "b", SlotC: ""})
	if _, ok := p.Get(SlotC); !ok {
		t.Fatal("slot C set to the empty string should be present")
	}
	p.Clear(SlotC)
	if _, ok := p.Get(SlotC); ok {
		t.Fatal("slot C should be absent after Clear")
	}
}

func TestSetInvalidSlot(t *testing.T) {
	p := New("topic", Identity{})
	if err := p.Set(Slot(SlotCount), "nope"); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("Set(out of range) = %v, want ErrInvalidSlot", err)
	}
	if err := p.Set(Slot(-1), "nope"); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("Set(-1) = %v, want ErrInvalidSlot", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		texts map[Slot]string
		want  error
	}{
		{"ok", "topic", map[Slot]string{SlotA: "a", SlotB: "b"}, nil},
		{"blank topic", "  ", map[Slot]string{SlotA: "a", SlotB: "b"}, ErrEmptyTopic},
		{"missing b", "topic", map[Slot]string{SlotA: "a", SlotC: "c"}, ErrMissingOption},
		{"missing a", "topic", map[Slot]string{SlotB: "b"}, ErrMissingOption},
		{"long multibyte topic", strings.Repeat("ü", 256), map[Slot]string{SlotA: "a", SlotB: "b"}, nil},
		{"topic too long", strings.Repeat("ü", 257), map[Slot]string{SlotA: "a", SlotB: "b"}, ErrTopicTooLong},
		{"options too long", "topic", map[Slot]string{SlotA: strings.Repeat("ü", 2100), SlotB: strings.Repeat("ü", 2100)}, ErrBodyTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newPoll(t, tt.topic, tt.texts).Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

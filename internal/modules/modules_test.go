package modules

import (
	"encoding/json"
	"testing"
)

func TestValidateRejectsMultipleChannels(t *testing.T) {
	effect := Effect{Snare: 50, Blind: 10}
	if err := effect.Validate(); err == nil {
		t.Fatalf("expected two channels to be rejected")
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	for _, effect := range []Effect{{Root: 101}, {RangeDebuff: -1}} {
		if err := effect.Validate(); err == nil {
			t.Fatalf("expected %+v to be rejected", effect)
		}
	}
}

func TestValidateAcceptsEmptyAndSingle(t *testing.T) {
	for _, effect := range []Effect{{}, {DefenceDebuff: 100}, {Snare: 1}} {
		if err := effect.Validate(); err != nil {
			t.Fatalf("expected %+v to be valid, got %v", effect, err)
		}
	}
}

func TestActiveReportsConfiguredChannel(t *testing.T) {
	channel, potency := Effect{AttackDebuff: 35}.Active()
	if channel != AttackDebuff || potency != 35 {
		t.Fatalf("expected attack_debuff/35, got %s/%d", channel, potency)
	}
	if channel, _ := (Effect{}).Active(); channel != ChannelNone {
		t.Fatalf("expected empty effect to report none, got %s", channel)
	}
}

func TestOfRoundTripsThroughPotency(t *testing.T) {
	for _, channel := range Channels() {
		effect := Of(channel, 42)
		if effect.Potency(channel) != 42 {
			t.Fatalf("expected %s potency 42, got %d", channel, effect.Potency(channel))
		}
		if got, _ := effect.Active(); got != channel {
			t.Fatalf("expected active channel %s, got %s", channel, got)
		}
	}
}

func TestEffectJSONUsesSnakeCase(t *testing.T) {
	data, err := json.Marshal(Effect{DefenceDebuff: 100})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"snare":0,"root":0,"blind":0,"attack_debuff":0,"defence_debuff":100,"range_debuff":0}`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}
}

func TestChannelTextEncoding(t *testing.T) {
	data, err := json.Marshal(map[string]Channel{"c": RangeDebuff})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"c":"range_debuff"}` {
		t.Fatalf("unexpected encoding %s", data)
	}
	var decoded Channel
	if err := decoded.UnmarshalText([]byte("Blind")); err != nil || decoded != Blind {
		t.Fatalf("expected blind, got %s (%v)", decoded, err)
	}
	if err := decoded.UnmarshalText([]byte("emp")); err == nil {
		t.Fatalf("expected unknown channel to fail")
	}
}

func TestLookupIgnoresCaseAndSpacing(t *testing.T) {
	def, ok := Lookup("  navi   BREAKDOWN ")
	if !ok {
		t.Fatalf("expected navi breakdown to resolve")
	}
	if def.Channel != Root || def.Effect.Root != MaxPotency || def.Tech != 2 {
		t.Fatalf("unexpected definition %+v", def)
	}
	if _, ok := Lookup("Warp Drive"); ok {
		t.Fatalf("expected unknown module lookup to fail")
	}
}

func TestCatalogEntriesAreValidAndSorted(t *testing.T) {
	defs := Catalog()
	if len(defs) != ChannelCount {
		t.Fatalf("expected %d modules, got %d", ChannelCount, len(defs))
	}
	for i, def := range defs {
		if err := def.Effect.Validate(); err != nil {
			t.Fatalf("%s invalid: %v", def.Name, err)
		}
		if channel, _ := def.Effect.Active(); channel != def.Channel {
			t.Fatalf("%s declares %s but configures %s", def.Name, def.Channel, channel)
		}
		if i > 0 && defs[i-1].Tech > def.Tech {
			t.Fatalf("catalog not sorted by tech at %d", i)
		}
	}
}

package sim

import (
	"math"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	s := New(Config{})

	if s.Population() != DefaultPopulation {
		t.Errorf("Population() = %d, want %d", s.Population(), DefaultPopulation)
	}
	if s.Seed() == 0 {
		t.Error("Seed() = 0, want a drawn seed")
	}
}

func TestSimulationDeterministic(t *testing.T) {
	a := New(Config{Population: 20, Seed: 42})
	b := New(Config{Population: 20, Seed: 42})

	for tick := 0; tick < 50; tick++ {
		ba := a.Advance()
		bb := b.Advance()
		for i := range ba.Updates {
			if ba.Updates[i].Value != bb.Updates[i].Value {
				t.Fatalf("tick %d entity %d: %v != %v", tick, i, ba.Updates[i].Value, bb.Updates[i].Value)
			}
		}
	}
	for id := 0; id < 20; id++ {
		ea, _ := a.Entity(id)
		eb, _ := b.Entity(id)
		if ea != eb {
			t.Errorf("entity %d: %+v != %+v", id, ea, eb)
		}
	}
}

func TestSimulationDifferentSeeds(t *testing.T) {
	a := New(Config{Population: 20, Seed: 1}).Advance()
	b := New(Config{Population: 20, Seed: 2}).Advance()

	same := 0
	for i := range a.Updates {
		if a.Updates[i].Value == b.Updates[i].Value {
			same++
		}
	}
	if same == len(a.Updates) {
		t.Error("different seeds produced identical batches")
	}
}

func TestSimulationBatchInvariants(t *testing.T) {
	s := New(Config{Population: 100, Seed: 7})

	prev := s.Advance()
	for tick := 1; tick < 500; tick++ {
		b := s.Advance()
		if len(b.Updates) != 100 {
			t.Fatalf("tick %d: len(Updates) = %d, want 100", tick, len(b.Updates))
		}
		for i, u := range b.Updates {
			if u.ID != i {
				t.Fatalf("tick %d: Updates[%d].ID = %d", tick, i, u.ID)
			}
			if u.Value < MinValue {
				t.Fatalf("tick %d: entity %d value %v below floor", tick, i, u.Value)
			}
			if d := math.Abs(u.Value - prev.Updates[i].Value); d > MaxStep+1e-9 {
				t.Fatalf("tick %d: entity %d moved %v", tick, i, d)
			}
		}
		prev = b
	}

	if s.Ticks() != 500 {
		t.Errorf("Ticks() = %d, want 500", s.Ticks())
	}
}

package commands

import (
	"context"
	"errors"
	"testing"
)

type holdCommand struct{ Nights int }

func (holdCommand) Key() string { return "test.hold" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchTyped(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[holdCommand, int](bus, "test.hold", HandlerFunc[holdCommand, int](func(_ context.Context, c holdCommand) (int, error) {
		return c.Nights * 2, nil
	}))

	got, err := Dispatch[holdCommand, int](context.Background(), bus, holdCommand{Nights: 3})
	if err != nil || got != 6 {
		t.Fatalf("Dispatch = %d, %v", got, err)
	}
	if _, err := Dispatch[holdCommand, string](context.Background(), bus, holdCommand{}); !errors.Is(err, ErrResultType) {
		t.Fatalf("wrong result type: %v", err)
	}
	if _, err := Dispatch[otherCommand, int](context.Background(), bus, otherCommand{}); !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("missing handler: %v", err)
	}
	if _, err := Dispatch[holdCommand, int](context.Background(), nil, holdCommand{}); !errors.Is(err, ErrNilBus) {
		t.Fatalf("nil bus: %v", err)
	}
	if keys := bus.Keys(); len(keys) != 1 || keys[0] != "test.hold" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[holdCommand, int](func(context.Context, holdCommand) (int, error) { return 0, nil })
	RegisterHandler[holdCommand, int](bus, "test.hold", h)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	RegisterHandler[holdCommand, int](bus, "test.hold", h)
}

package commands_test

import (
	"testing"

	"tasksession/internal/commands"
)

func TestDefaultRegistry(t *testing.T) {
	want := []string{"add", "create", "help", "list", "login", "logout", "register", "rm", "shell", "status", "version"}

	all := commands.DefaultRegistry.All()
	if len(all) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(all))
	}
	for i, cmd := range all {
		if cmd.Name() != want[i] {
			t.Errorf("command %d: expected %s, got %s", i, want[i], cmd.Name())
		}
	}

	for alias, name := range map[string]string{"ls": "list", "delete": "rm", "signup": "register", "whoami": "status"} {
		cmd, ok := commands.DefaultRegistry.Find(alias)
		if !ok || cmd.Name() != name {
			t.Errorf("alias %s: expected %s", alias, name)
		}
	}
}

func TestRegistry_RejectsClash(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.ListCmd{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&commands.ListCmd{}); err == nil {
		t.Error("expected duplicate name to be rejected")
	}

	if _, ok := r.Find("rm"); ok {
		t.Error("unregistered command should not be found")
	}
}

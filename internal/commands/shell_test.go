package commands_test

import (
	"strings"
	"testing"

	"tasksession/internal/commands"
	"tasksession/internal/exitcode"
)

func TestShellCommand_Session(t *testing.T) {
	sess, backend, store := loggedOutSession()
	backend.AddUser("alice", "pw")

	script := strings.Join([]string{
		"list",
		"login alice pw",
		"add Buy milk",
		"add Urgent report -- due friday",
		"add   ",
		"tasks",
		"rm #1",
		"status",
		"bogus",
		"logout",
		"quit",
		"list",
	}, "\n")

	cmd := &commands.ShellCmd{In: strings.NewReader(script)}
	stdout, stderr, code := runCommand(t, cmd, sess, nil, false)

	expectCode(t, exitcode.Success, code, stderr)

	// One prompt per line read; the loop stops at quit.
	wantOut := "> " +
		"> ok\n" +
		"> ok 1\n" +
		"> ok 2\n" +
		"> " +
		"> " +
		"   1  Medium 0.60  Buy milk\n" +
		"   2  High   0.90  Urgent report\n" +
		"      due friday\n" +
		"> ok\n" +
		"> logged in, 1 tasks loaded\n" +
		"> " +
		"> ok\n" +
		"> "
	if stdout != wantOut {
		t.Errorf("stdout mismatch\nwant:\n%s\ngot:\n%s", wantOut, stdout)
	}

	wantErr := "error: not logged in (run: tasksession login)\n" +
		"error: title required\n" +
		"error: unknown command: bogus\n"
	if stderr != wantErr {
		t.Errorf("stderr mismatch\nwant:\n%s\ngot:\n%s", wantErr, stderr)
	}

	if store.IsAuthenticated() {
		t.Error("expected logged out after logout")
	}
	if n := len(backend.ServerTasks("alice")); n != 1 {
		t.Errorf("expected 1 server task, got %d", n)
	}
}

func TestShellCommand_QuietHidesPrompt(t *testing.T) {
	sess, backend, _ := newSession(t)
	backend.AddTask("alice", "Buy milk", nil, 0.3)

	cmd := &commands.ShellCmd{In: strings.NewReader("add Call mom\nlist\n")}
	stdout, stderr, code := runCommand(t, cmd, sess, nil, true)

	expectCode(t, exitcode.Success, code, stderr)
	want := "   1  Low    0.30  Buy milk\n" +
		"   2  Medium 0.60  Call mom\n"
	if stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestShellCommand_ExpiredSession(t *testing.T) {
	sess, backend, store := newSession(t)
	backend.Expire()

	cmd := &commands.ShellCmd{In: strings.NewReader("list\nlist\n")}
	_, stderr, code := runCommand(t, cmd, sess, nil, true)

	expectCode(t, exitcode.Success, code, stderr)
	want := "error: session expired, logged out (run: tasksession login)\n" +
		"error: not logged in (run: tasksession login)\n"
	if stderr != want {
		t.Errorf("expected %q, got %q", want, stderr)
	}
	if store.IsAuthenticated() {
		t.Error("expected credential to be cleared")
	}
	if backend.Calls("list") != 1 {
		t.Errorf("expected one list call, got %d", backend.Calls("list"))
	}
}

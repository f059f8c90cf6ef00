package eventsocket

import (
	"context"
	"errors"
	"testing"
)

// recordingExecutor captures commands instead of running them.
type recordingExecutor struct {
	commands []string
	result   Result
	err      error
}

func (r *recordingExecutor) Run(ctx context.Context, command string) (Result, error) {
	r.commands = append(r.commands, command)
	return r.result, r.err
}

func TestCatalog_Definitions(t *testing.T) {
	defs := DefaultCatalog().Definitions()

	want := []string{
		"queue-reload", "reload-acl", "reloadxml", "show-calls",
		"show-channels", "sofia-rescan", "sofia-status", "status",
	}
	if len(defs) != len(want) {
		t.Fatalf("len(defs) = %d, want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("defs[%d].Name = %s, want %s", i, defs[i].Name, name)
		}
	}
}

func TestCatalog_Run(t *testing.T) {
	exec := &recordingExecutor{result: Result{OK: true, Output: "+OK"}}
	catalog := DefaultCatalog()

	res, err := catalog.Run(context.Background(), exec, "sofia-rescan", "external")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !res.OK {
		t.Error("OK = false, want true")
	}

	if _, err := catalog.Run(context.Background(), exec, "reloadxml"); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := []string{"sofia profile external rescan", "reloadxml"}
	if len(exec.commands) != len(want) {
		t.Fatalf("commands = %q, want %q", exec.commands, want)
	}
	for i := range want {
		if exec.commands[i] != want[i] {
			t.Errorf("commands[%d] = %q, want %q", i, exec.commands[i], want[i])
		}
	}
}

func TestCatalog_Run_NotFound(t *testing.T) {
	exec := &recordingExecutor{}

	res, err := DefaultCatalog().Run(context.Background(), exec, "shutdown")
	if !errors.Is(err, ErrActionNotFound) {
		t.Errorf("err = %v, want ErrActionNotFound", err)
	}
	if res.OK {
		t.Error("OK = true, want false")
	}
	if len(exec.commands) != 0 {
		t.Errorf("commands = %q, want none", exec.commands)
	}
}

func TestCatalog_Run_InvalidArguments(t *testing.T) {
	exec := &recordingExecutor{}
	catalog := DefaultCatalog()

	cases := [][]string{
		{},
		{"internal", "external"},
		{""},
		{"internal rescan"},
		{"internal\nreloadxml"},
		{"a\x00b"},
	}
	for _, args := range cases {
		_, err := catalog.Run(context.Background(), exec, "sofia-rescan", args...)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Run(%q) err = %v, want ErrInvalidArgument", args, err)
		}
	}
	if len(exec.commands) != 0 {
		t.Errorf("commands = %q, want none", exec.commands)
	}
}

func TestCatalog_Add(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(NewTemplateAction(ActionDefinition{
		Name:   "gateway-kill",
		Params: []string{"profile", "gateway"},
	}, "sofia profile {profile} killgw {gateway}"))

	action, ok := catalog.Get("gateway-kill")
	if !ok {
		t.Fatal("action not registered")
	}
	cmd, err := action.Command([]string{"external", "carrier1"})
	if err != nil {
		t.Fatalf("Command error: %v", err)
	}
	if cmd != "sofia profile external killgw carrier1" {
		t.Errorf("cmd = %q", cmd)
	}
}

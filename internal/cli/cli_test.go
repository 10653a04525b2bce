package cli

import "testing"

func TestNewRootCommand_RegistersExpectedSubcommands(t *testing.T) {
	root := NewRootCommand("0.1.0-test")
	want := map[string]bool{"serve": false, "analyze": false, "doctor": false, "version": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}

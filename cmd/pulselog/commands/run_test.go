package commands

import "testing"

func TestRunCommandFlags(t *testing.T) {
	cmd := newRunCommand()

	for _, name := range []string{"duration", "persist", "db", "metrics-listen"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("run command missing --%s flag", name)
		}
	}
}

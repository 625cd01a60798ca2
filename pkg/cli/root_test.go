package cli

import (
	"testing"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"edit", "apply", "update"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("missing %s command: %v", name, err)
		}
	}
	for _, flag := range []string{"verbose", "config"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("missing --%s flag", flag)
		}
	}
}

func TestEditTakesOneImageID(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"edit", "1", "2"})
	root.SilenceErrors = true
	if err := root.Execute(); err == nil {
		t.Fatalf("expected an argument error")
	}
}

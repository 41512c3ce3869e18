package main

import (
	"bytes"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"help", []string{"--help"}, false},
		{"migrate rejects unknown command", []string{"migrate", "sideways"}, true},
		{"migrate rejects extra args", []string{"migrate", "up", "down"}, true},
		{"serve takes no args", []string{"serve", "now"}, true},
		{"user add requires flags", []string{"user", "add", "--username", "root"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCommand(t, tc.args...)
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUserAddRefusesMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	_, err := runCommand(t, "user", "add", "--username", "root", "--email", "root@example.com", "--password", "secret1", "--role", "admin")
	if err == nil || !strings.Contains(err.Error(), "persistent store") {
		t.Fatalf("expected persistent store error, got %v", err)
	}
}

func TestServeRequiresSecret(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TOKEN_SECRET", "")
	_, err := runCommand(t, "serve")
	if err == nil || !strings.Contains(err.Error(), "TOKEN_SECRET") {
		t.Fatalf("expected TOKEN_SECRET error, got %v", err)
	}
}

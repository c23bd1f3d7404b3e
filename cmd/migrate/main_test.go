package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/zansmarket/storefront-backend/pkg/migrate"
)

func TestParseArgs(t *testing.T) {
	cases := []struct {
		name    string
		args    []string
		cmd     string
		dir     string
		wantErr bool
	}{
		{name: "defaults to embedded up", args: nil, cmd: "up", dir: ""},
		{name: "positional command", args: []string{"status"}, cmd: "status", dir: ""},
		{name: "create targets source dir", args: []string{"-cmd", "create", "-name", "create_coupons_table"}, cmd: "create", dir: migrate.DefaultDir},
		{name: "validate honours dir", args: []string{"-dir", "tmp/mig", "validate"}, cmd: "validate", dir: "tmp/mig"},
		{name: "create needs name", args: []string{"create"}, wantErr: true},
		{name: "version needs target", args: []string{"version"}, wantErr: true},
		{name: "unknown command", args: []string{"redo"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := parseArgs(tc.args, io.Discard)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", opts)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse args: %v", err)
			}
			if opts.cmd != tc.cmd || opts.dir != tc.dir {
				t.Fatalf("expected cmd=%s dir=%q, got %+v", tc.cmd, tc.dir, opts)
			}
		})
	}
}

func TestRunOfflineCreatesAndValidates(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	if err := runOffline(options{cmd: "create", dir: dir, name: "create_coupons_table"}, &out); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out.String(), "_create_coupons_table.sql") {
		t.Fatalf("expected created path in output, got %q", out.String())
	}
	if err := runOffline(options{cmd: "validate", dir: dir}, &out); err != nil {
		t.Fatalf("validate: %v", err)
	}

	out.Reset()
	if err := runOffline(options{cmd: "versions"}, &out); err != nil {
		t.Fatalf("versions: %v", err)
	}
	if lines := strings.Fields(out.String()); len(lines) != 3 {
		t.Fatalf("expected 3 embedded versions, got %q", out.String())
	}
}

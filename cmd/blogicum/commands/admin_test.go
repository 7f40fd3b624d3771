// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{arg: "42", want: 42},
		{arg: "0", wantErr: true},
		{arg: "-3", wantErr: true},
		{arg: "abc", wantErr: true},
		{arg: "", wantErr: true},
	}
	for _, tt := range tests {
		id, err := parseID("post", tt.arg)
		if tt.wantErr {
			assert.Error(t, err, "arg %q", tt.arg)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, id)
	}
}

func TestAdminModerationCommands(t *testing.T) {
	tests := []struct {
		path    string
		args    []string
		wantErr bool
	}{
		{path: "admin posts publish", args: []string{"1"}},
		{path: "admin posts unpublish", args: []string{"1"}},
		{path: "admin posts publish", args: nil, wantErr: true},
		{path: "admin posts set-category", args: []string{"1", "travel"}},
		{path: "admin posts set-category", args: []string{"1"}},
		{path: "admin posts set-category", args: []string{"1", "a", "b"}, wantErr: true},
		{path: "admin posts set-location", args: []string{"1"}},
		{path: "admin posts set-author", args: []string{"1"}, wantErr: true},
		{path: "admin posts set-author", args: []string{"1", "anna"}},
		{path: "admin posts delete", args: []string{"1"}},
		{path: "admin comments list", args: []string{"1"}},
		{path: "admin comments delete", args: []string{"9"}},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+strings.Join(tt.args, " "), func(t *testing.T) {
			cmd, _, err := rootCmd.Find(strings.Fields(tt.path))
			require.NoError(t, err)
			require.Equal(t, tt.path, cmd.CommandPath()[len("blogicum "):])

			err = cmd.Args(cmd, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostsReportFlags(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"admin", "posts", "report"})
	require.NoError(t, err)
	for _, name := range []string{"limit", "published", "search"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag --%s", name)
	}
}

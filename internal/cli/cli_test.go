package cli

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/facegraph/internal/app"
	"github.com/vk/facegraph/internal/compiled"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantCode int
	}{
		{
			name: "defaults",
			args: []string{"face.hcl"},
			want: &app.Config{
				GraphPath:     "face.hcl",
				Frames:        1,
				FPS:           30,
				LiveNamespace: "/",
				LogFormat:     "text",
				LogLevel:      "info",
			},
		},
		{
			name: "all options",
			args: []string{
				"-frames", "4", "-fps", "60", "-out", "face.fgc",
				"-set", "jaw=0.5", "-set", "smile=0.25:add",
				"-blend", "blink=1:0.2",
				"-live-url", "http://localhost:3000", "-live-namespace", "/face",
				"-healthcheck-port", "8080", "-log-format", "JSON", "-log-level", "debug",
				"faces/",
			},
			want: &app.Config{
				GraphPath: "faces/",
				BlobPath:  "face.fgc",
				Frames:    4,
				FPS:       60,
				UserValues: []app.UserValue{
					{Node: "jaw", Value: 0.5, Op: compiled.OpReplace},
					{Node: "smile", Value: 0.25, Op: compiled.OpAdd},
				},
				Blends:          []app.Blend{{Node: "blink", Value: 1, Seconds: 0.2}},
				LiveURL:         "http://localhost:3000",
				LiveNamespace:   "/face",
				HealthcheckPort: 8080,
				LogFormat:       "json",
				LogLevel:        "debug",
			},
		},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "no path", args: []string{}, wantExit: true},
		{name: "unknown flag", args: []string{"-nope", "face.hcl"}, wantCode: 2},
		{name: "bad set", args: []string{"-set", "jaw", "face.hcl"}, wantCode: 2},
		{name: "bad set op", args: []string{"-set", "jaw=1:divide", "face.hcl"}, wantCode: 2},
		{name: "bad blend", args: []string{"-blend", "jaw=1", "face.hcl"}, wantCode: 2},
		{name: "bad log format", args: []string{"-log-format", "xml", "face.hcl"}, wantCode: 2},
		{name: "bad log level", args: []string{"-log-level", "loud", "face.hcl"}, wantCode: 2},
		{name: "zero fps", args: []string{"-fps", "0", "face.hcl"}, wantCode: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(tc.args, out)

			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			if diff := cmp.Diff(tc.want, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

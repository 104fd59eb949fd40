package livelink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	event string
	args  []any
}

func TestPublish(t *testing.T) {
	var got []recorded
	p := New(func(event string, args ...any) {
		got = append(got, recorded{event, args})
	})
	defer p.Close()

	f := Frame{Frame: 3, Time: 0.1, Values: map[string]float32{"jaw_open": 0.5}}
	p.Publish(context.Background(), f)

	require.Len(t, got, 1)
	assert.Equal(t, FrameEvent, got[0].event)
	require.Len(t, got[0].args, 1)
	assert.Equal(t, f, got[0].args[0])
	assert.Equal(t, 1, p.Sent())
}

func TestDial_InvalidURL(t *testing.T) {
	for _, u := range []string{"://nope", "relative/path"} {
		t.Run(u, func(t *testing.T) {
			p, err := Dial(context.Background(), Options{URL: u})
			assert.Nil(t, p)
			assert.Error(t, err)
		})
	}
}

package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeySetDeduplicates(t *testing.T) {
	var s KeySet

	assert.True(t, s.Press(KeyW))
	assert.False(t, s.Press(KeyW))
	assert.True(t, s.Press(KeyShiftLeft))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{KeyShiftLeft, KeyW}, s.Keys())

	assert.True(t, s.Release(KeyW))
	assert.False(t, s.Release(KeyW))
	assert.False(t, s.Held(KeyW))
	assert.True(t, s.Held(KeyShiftLeft))
}

func TestKeySetZeroValue(t *testing.T) {
	var s KeySet
	assert.False(t, s.Held(KeyA))
	assert.False(t, s.Release(KeyA))
	assert.Empty(t, s.Keys())
}

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"key press", KeyPress(KeyTab), `key-press "Tab"`},
		{"key release", KeyRelease(KeySpace), `key-release "space"`},
		{"move", MouseMove(10, 20), "mouse-move (10, 20)"},
		{"button", ButtonPress(ButtonWheelDown, 1, 2), "mouse-button-press 5 at (1, 2)"},
		{"button release", ButtonRelease(ButtonLeft, 3, 4), "mouse-button-release 1 at (3, 4)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.String())
		})
	}
}

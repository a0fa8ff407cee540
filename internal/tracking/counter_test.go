package tracking

import (
	"testing"
	"time"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestMessageCountLabel(t *testing.T) {
	tests := []struct {
		name string
		nota model.Nota
		want string
	}{
		{"never sent", model.Nota{}, "0x"},
		{"no anchor", model.Nota{MessageSentAt: day0}, "1x"},
		{"same day without count", model.Nota{MessageSentAt: day0.Add(time.Hour), FirstMessageAt: day0}, "1x"},
		{"stored count", model.Nota{MessageSentAt: day0.Add(days(4)), FirstMessageAt: day0, MessageCount: 3}, "3x"},
		{"stored count same day", model.Nota{MessageSentAt: day0, FirstMessageAt: day0, MessageCount: 2}, "2x"},
		{"estimated from gap", model.Nota{MessageSentAt: day0.Add(days(5)), FirstMessageAt: day0}, "4x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MessageCountLabel(&tt.nota))
		})
	}
}

func TestShowsFirstMessage(t *testing.T) {
	assert.False(t, ShowsFirstMessage(&model.Nota{MessageSentAt: day0}))
	assert.False(t, ShowsFirstMessage(&model.Nota{MessageSentAt: day0, FirstMessageAt: day0}))
	assert.True(t, ShowsFirstMessage(&model.Nota{MessageSentAt: day0.Add(days(2)), FirstMessageAt: day0}))
}

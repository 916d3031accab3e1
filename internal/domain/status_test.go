package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatusWalksForwardPath(t *testing.T) {
	s := StatusDiterima
	want := []OrderStatus{StatusDiproses, StatusSelesaiProduksi, StatusSiapKirim, StatusSelesai}
	for _, w := range want {
		next, ok := NextStatus(s)
		assert.True(t, ok)
		assert.Equal(t, w, next)
		s = next
	}
	// Selesai is terminal, nothing after it.
	_, ok := NextStatus(s)
	assert.False(t, ok)
}

func TestNextStatusTerminalAndUnknown(t *testing.T) {
	for _, s := range []OrderStatus{StatusSelesai, StatusDitolak, "Dikirim", ""} {
		_, ok := NextStatus(s)
		assert.False(t, ok, string(s))
	}
}

func TestCanTransitionNoSkipNoBack(t *testing.T) {
	assert.True(t, CanTransition(StatusDiterima, StatusDiproses))
	assert.True(t, CanTransition(StatusSiapKirim, StatusSelesai))

	assert.False(t, CanTransition(StatusDiterima, StatusSelesaiProduksi), "skip")
	assert.False(t, CanTransition(StatusDiproses, StatusDiterima), "backward")
	assert.False(t, CanTransition(StatusSelesai, StatusDiproses), "out of terminal")
}

func TestCanTransitionToDitolak(t *testing.T) {
	for _, s := range []OrderStatus{StatusDiterima, StatusDiproses, StatusSelesaiProduksi, StatusSiapKirim} {
		assert.True(t, CanTransition(s, StatusDitolak), string(s))
	}
	assert.False(t, CanTransition(StatusSelesai, StatusDitolak))
	assert.False(t, CanTransition(StatusDitolak, StatusDitolak))
	assert.False(t, CanTransition("Dikirim", StatusDitolak))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusSelesai.Terminal())
	assert.True(t, StatusDitolak.Terminal())
	assert.False(t, StatusDiterima.Terminal())
	assert.False(t, StatusSiapKirim.Terminal())
}

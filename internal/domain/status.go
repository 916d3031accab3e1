package domain

type OrderStatus string

// Fulfillment lifecycle, strictly forward. Ditolak is a parallel terminal
// state reachable from any non-terminal status via an explicit rejection.
const (
	StatusDiterima        OrderStatus = "Pesanan Diterima"
	StatusDiproses        OrderStatus = "Diproses"
	StatusSelesaiProduksi OrderStatus = "Selesai Produksi"
	StatusSiapKirim       OrderStatus = "Siap Kirim"
	StatusSelesai         OrderStatus = "Selesai"
	StatusDitolak         OrderStatus = "Ditolak"
)

var forwardPath = []OrderStatus{
	StatusDiterima,
	StatusDiproses,
	StatusSelesaiProduksi,
	StatusSiapKirim,
	StatusSelesai,
}

// NextStatus returns the next forward status. ok is false for terminal
// states (Selesai, Ditolak) and for unknown values.
func NextStatus(s OrderStatus) (OrderStatus, bool) {
	for i, st := range forwardPath {
		if st == s && i+1 < len(forwardPath) {
			return forwardPath[i+1], true
		}
	}
	return "", false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusSelesai || s == StatusDitolak
}

func (s OrderStatus) Valid() bool {
	if s == StatusDitolak {
		return true
	}
	for _, st := range forwardPath {
		if st == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether from → to is a legal move: one step forward
// along the path, or a rejection of any non-terminal order. No skipping, no
// going back.
func CanTransition(from, to OrderStatus) bool {
	if to == StatusDitolak {
		return from.Valid() && !from.Terminal()
	}
	next, ok := NextStatus(from)
	return ok && next == to
}

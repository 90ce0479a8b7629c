package clients

// SetIDs replaces the client id generator.
func (h *Hub) SetIDs(fn func() string) {
	h.newID = fn
}

package http

// Handler serves the caller's identity.
type Handler struct{}

func New() *Handler {
	return &Handler{}
}

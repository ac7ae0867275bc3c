package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

// Action is the client-side verb. Ping is the only one the sync stream
// accepts; everything else on the socket flows server to client.
type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope peeks at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

// Event names the frames the stream itself emits. Domain events arrive
// as raw relayed payloads and carry their own type field.
type Event string

const (
	EventError Event = "error"
	EventPong  Event = "pong"
)

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

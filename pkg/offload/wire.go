package offload

// Wire frames exchanged with a lisd daemon over one websocket connection.
// Requests and responses are correlated by ID so a response that arrives
// after its call timed out is recognizably stale.

// Request carries one transferred position buffer.
type Request struct {
	ID        uint64    `json:"id"`
	Positions []float64 `json:"positions"`
}

// Response resolves one request: either the subsequence index list or an
// error message, never both.
type Response struct {
	ID      uint64 `json:"id"`
	Indices []int  `json:"indices,omitempty"`
	Error   string `json:"error,omitempty"`
}

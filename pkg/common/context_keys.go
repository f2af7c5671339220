package common

// Fiber locals set by the middleware chain. They are plain strings because
// the websocket upgrade only carries string keyed locals over to the conn.
const (
	ClientIDLocal  = "client_id"
	UserAgentLocal = "user_agent"
	MetadataLocal  = "metadata"
)

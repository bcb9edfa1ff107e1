/*
Package server implements msgpack IPC for word completion services.

The server reads a stream of msgpack maps from stdin and answers each with one msgpack map
on stdout. Messages are processed synchronously with timing info included in completion
responses. On start the server writes a ready message:

	{"status": "ready"}

# IPC

Each request carries an ID, echoed in its response, and an action. A missing action means
complete:

	{"id": "req_001", "p": "ame", "l": 24}

The server responds with suggestions ranked by priority, rank 1 being the best:

	{"id": "req_001", "s": [{"w": "america", "r": 1, "f": 40}, {"w": "amenity", "r": 2, "f": 3}], "c": 2, "t": 145}

Accepting a word raises its priority, or adds it when unknown:

	{"id": "req_002", "a": "accept", "w": "amenity"}
	{"id": "req_002", "w": "amenity", "f": 4}

Lookup reports one of "found", "prefix" or "absent":

	{"id": "req_003", "a": "lookup", "w": "ame"}
	{"id": "req_003", "st": "prefix"}

Stats returns the dictionary counters:

	{"id": "req_004", "a": "stats"}

Config changes server limits at runtime and saves them to the config file. Omitted keys
keep their value, and the response carries the settings in effect:

	{"id": "req_005", "a": "config", "max_limit": 20, "enable_filter": true}
	{"id": "req_005", "status": "ok", "max_limit": 20, "min_prefix": 1, "max_prefix": 60, "enable_filter": true}

Failed requests get a CompletionError with an HTTP style code.
*/
package server

// Supported request actions.
const (
	ActionComplete = "complete"
	ActionAccept   = "accept"
	ActionLookup   = "lookup"
	ActionStats    = "stats"
	ActionConfig   = "config"
)

// Request is the single inbound message shape. Fields unused by an action are ignored.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"a,omitempty"`
	Prefix string `msgpack:"p,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
	Word   string `msgpack:"w,omitempty"`

	MaxLimit     *int  `msgpack:"max_limit,omitempty"`
	MinPrefix    *int  `msgpack:"min_prefix,omitempty"`
	MaxPrefix    *int  `msgpack:"max_prefix,omitempty"`
	EnableFilter *bool `msgpack:"enable_filter,omitempty"`
}

// CompletionRequest - minimal completion request
type CompletionRequest struct {
	ID     string `msgpack:"id"`
	Prefix string `msgpack:"p"`
	Limit  int    `msgpack:"l,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word     string `msgpack:"w"`
	Rank     uint16 `msgpack:"r"`
	Priority int    `msgpack:"f"`
}

// CompletionResponse - completion response, TimeTaken in microseconds
type CompletionResponse struct {
	ID              string                 `msgpack:"id"`
	Suggestions     []CompletionSuggestion `msgpack:"s"`
	Count           int                    `msgpack:"c"`
	TimeTaken       int64                  `msgpack:"t"`
	CorrectedPrefix string                 `msgpack:"cp,omitempty"`
}

// AcceptResponse carries the priority of the accepted word
type AcceptResponse struct {
	ID       string `msgpack:"id"`
	Word     string `msgpack:"w"`
	Priority int    `msgpack:"f"`
}

// LookupResponse - Priority is only set when Status is "found"
type LookupResponse struct {
	ID       string `msgpack:"id"`
	Status   string `msgpack:"st"`
	Priority int    `msgpack:"f,omitempty"`
}

// StatsResponse - dictionary counters
type StatsResponse struct {
	ID    string         `msgpack:"id"`
	Stats map[string]int `msgpack:"stats"`
}

// ConfigResponse - server settings after a config request
type ConfigResponse struct {
	ID           string `msgpack:"id"`
	Status       string `msgpack:"status"`
	MaxLimit     int    `msgpack:"max_limit"`
	MinPrefix    int    `msgpack:"min_prefix"`
	MaxPrefix    int    `msgpack:"max_prefix"`
	EnableFilter bool   `msgpack:"enable_filter"`
}

// StatusResponse is sent once the server is ready
type StatusResponse struct {
	Status string `msgpack:"status"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

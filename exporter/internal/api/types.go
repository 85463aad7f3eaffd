package api

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

// resultResponse is the JSON body of a successful POST /restart.
type resultResponse struct {
	Result string `json:"result"`
}

const resultDone = "done"

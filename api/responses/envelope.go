package responses

// Success wraps every 2xx JSON body.
type Success struct {
	Data any `json:"data"`
}

// ErrorBody is the client-facing part of a failure. Details only appear for
// codes whose metadata allows them.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Failure struct {
	Error ErrorBody `json:"error"`
}

package hub

import "fmt"

// AuthError reports a failed login: transport error, non-2xx status, or a
// response that does not carry a usable token.
type AuthError struct {
	Status int    // HTTP status, 0 when no response was received
	Body   string // truncated response body, if any
	Err    error
}

func (e *AuthError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("hub login: status %d: %v", e.Status, e.Err)
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("hub login: unexpected status %d: %s", e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("hub login: unexpected status %d", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("hub login: %v", e.Err)
	default:
		return "hub login failed"
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a failed authenticated call (accessory listing or restart).
type FetchError struct {
	Op     string // "list accessories" | "restart"
	Status int
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("hub %s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("hub %s: unexpected status %d: %s", e.Op, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("hub %s: unexpected status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("hub %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("hub %s failed", e.Op)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

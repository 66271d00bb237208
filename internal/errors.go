package internal

import "fmt"

// InvalidAddressError indicates the caller supplied an address that fails the
// XRPL format check. It is raised locally, before any network call is made.
type InvalidAddressError struct {
	Address string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid XRPL address: %q", e.Address)
}

// NetworkError represents a failed transport call, or a call that succeeded
// but carried no payload. Backends wrap their native errors in this type;
// the client never retries it.
type NetworkError struct {
	// Op is the remote operation that failed, e.g. "account_info".
	Op  string
	Err error

	// NotFound reports that the remote side could not find the requested
	// resource (unknown account or transaction).
	NotFound bool
	// Timeout reports that the call exceeded its deadline.
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("network error in %s", e.Op)
	}
	return fmt.Sprintf("network error in %s: %s", e.Op, e.Err.Error())
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates the requested resource was not found.
func (e *NetworkError) IsNotFound() bool {
	return e.NotFound
}

// IsTimeout returns true if the error indicates a timeout occurred.
func (e *NetworkError) IsTimeout() bool {
	return e.Timeout
}

// MalformedResponseError indicates a backend returned a syntactically valid
// response that is missing a semantically required field. This is treated as
// a remote bug and never retried.
type MalformedResponseError struct {
	// Missing names the absent field, e.g. "fee drops" or "account sequence".
	Missing string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from backend: missing %s", e.Missing)
}

// SigningFailureError indicates the signer collaborator failed or produced
// no signed transaction.
type SigningFailureError struct {
	Err error
}

func (e *SigningFailureError) Error() string {
	if e.Err == nil {
		return "signing failed: signer returned no signed transaction"
	}
	return "signing failed: " + e.Err.Error()
}

// Unwrap returns the signer's underlying error, if any.
func (e *SigningFailureError) Unwrap() error {
	return e.Err
}

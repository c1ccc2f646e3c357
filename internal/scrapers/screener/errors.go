package screener

import (
	"errors"
	"fmt"
)

var (
	// ErrCSRFTokenMissing is the parse error for a login page without the
	// hidden csrf input.
	ErrCSRFTokenMissing   = errors.New("parse login page: csrf token input not found")
	ErrInvalidCredentials = errors.New("authenticated marker not found in login response")
	ErrFetchExhausted     = errors.New("retries exhausted")
	ErrNoTable            = errors.New("no table found on page")
	ErrEmptyTable         = errors.New("table has no rows")
)

// LoginFailure is returned by Login for bad credentials, a missing csrf token
// or any network error while authenticating.
type LoginFailure struct {
	Username string
	Err      error
}

func (e *LoginFailure) Error() string {
	return fmt.Sprintf("login failed for %s: %s", e.Username, e.Err.Error())
}

func (e *LoginFailure) Unwrap() error {
	return e.Err
}

// FetchFailure is returned by Fetch once every attempt has failed.
type FetchFailure struct {
	Url      string
	Attempts int
	Err      error
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("fetch %s: failed after %d attempt(s): %s", e.Url, e.Attempts, e.Err.Error())
}

func (e *FetchFailure) Unwrap() []error {
	return []error{ErrFetchExhausted, e.Err}
}

// TableParseError is returned by the page parser when the expected table is
// missing or malformed.
type TableParseError struct {
	Err error
}

func (e *TableParseError) Error() string {
	return fmt.Sprintf("parse table: %s", e.Err.Error())
}

func (e *TableParseError) Unwrap() error {
	return e.Err
}

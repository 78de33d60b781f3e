package service

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names accepted by the server listing
const (
	ParamCategory       = "category"
	ParamQty            = "qty"
	ParamByUser         = "by_user"
	ParamByServerID     = "by_serverid"
	ParamWithNumMembers = "with_num_members"
)

// FilterRequest is the typed filter intent of one listing call. Integer
// parameters stay raw so the filter consuming them reports its own error.
type FilterRequest struct {
	Category       string
	Qty            string
	ByUser         bool
	ByServerID     string
	WithNumMembers bool
}

// AuthContext is the caller as seen by the listing. UserID is nil for
// anonymous callers and for client credentials.
type AuthContext struct {
	Authenticated bool
	UserID        *int64
}

// Anonymous is the AuthContext of an unauthenticated caller.
var Anonymous = AuthContext{}

// ParseFilterRequest reads the listing parameters. Missing parameters mean
// "no filter"; flags are set only by the exact literal "true".
func ParseFilterRequest(params url.Values) FilterRequest {
	return FilterRequest{
		Category:       params.Get(ParamCategory),
		Qty:            params.Get(ParamQty),
		ByUser:         params.Get(ParamByUser) == "true",
		ByServerID:     params.Get(ParamByServerID),
		WithNumMembers: params.Get(ParamWithNumMembers) == "true",
	}
}

// parseInt coerces a raw parameter to an integer, tolerating surrounding
// whitespace and a leading sign.
func parseInt(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

// parseQty reads a truncation bound. Integers outside the int range saturate:
// a huge qty keeps every row and a hugely negative one keeps none.
func parseQty(raw string) (int, error) {
	n, err := parseInt(raw)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	switch {
	case n > math.MaxInt:
		return math.MaxInt, nil
	case n < 0:
		return 0, nil
	}
	return int(n), nil
}

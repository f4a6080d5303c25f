package public

import "errors"

var errNoTipState = errors.New("public: no state recorded for the current tip")
var errUnknownAccount = errors.New("public: unknown account")

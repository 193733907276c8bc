package common

import "time"

// AuthorizationHeaderName carries the bearer credential on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// StorePrecision is the timestamp resolution kept by the store. Image dates
// are truncated to it before insert so cursors round-trip exactly.
const StorePrecision = time.Microsecond

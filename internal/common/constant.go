package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// dev token on privileged calls.
const AccessTokenHeaderName = "access_token"

// DevTokenHeaderName is the HTTP header accepted as an alternative to
// "Authorization: Bearer".
const DevTokenHeaderName = "X-Dev-Token"

// DefaultDevPIN is the privileged override PIN used when none is configured.
const DefaultDevPIN = "9659829"

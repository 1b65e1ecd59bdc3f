package types

// FailureKind distinguishes why a delegate call could not produce a usable result
type FailureKind string

const (
	// ParseFailure means the delegate answered but the output did not match the expected schema
	ParseFailure FailureKind = "parse"
	// UpstreamFailure means the delegate call itself failed (network, quota, timeout)
	UpstreamFailure FailureKind = "upstream"
)

package models

import (
	"net/url"
	"strconv"
)

// Fingerprint identifies a distinct cached query.
type Fingerprint string

// Filter holds the listing parameters. Zero values mean "not filtered".
type Filter struct {
	Location string
	Hobby    string
	Official *bool
}

// Fingerprint serializes the filter with sorted keys, so equal filters
// always produce equal fingerprints.
func (f Filter) Fingerprint() Fingerprint {
	v := url.Values{}
	if f.Location != "" {
		v.Set("location", f.Location)
	}
	if f.Hobby != "" {
		v.Set("hobby", f.Hobby)
	}
	if f.Official != nil {
		v.Set("official", strconv.FormatBool(*f.Official))
	}
	return Fingerprint(v.Encode())
}

// String is the human form used by the CLI.
func (f Filter) String() string {
	if fp := f.Fingerprint(); fp != "" {
		return string(fp)
	}
	return "all"
}

// Package id provides the prefixed, K-sortable identifiers used by every
// Folio record. An ID prints as "prefix_suffix", where the suffix is a
// base32 UUIDv7.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix names the kind of record an ID belongs to.
type Prefix string

const (
	PrefixContentType Prefix = "ctype"
	PrefixEntry       Prefix = "entry"
	PrefixWebhook     Prefix = "wh"
	PrefixTask        Prefix = "whdel"
	PrefixSite        Prefix = "site"
	PrefixForm        Prefix = "form"
	PrefixSubmission  Prefix = "fsub"
	PrefixMedia       Prefix = "media"
)

// ID identifies one record. The zero value is Nil and encodes as an empty
// string.
//
//nolint:recvcheck // UnmarshalText needs a pointer receiver.
type ID struct {
	tid typeid.TypeID
	set bool
}

// Nil is the absent ID.
var Nil ID

// New returns a fresh ID. An invalid prefix is a programming error and
// panics.
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: generate %q: %v", prefix, err))
	}
	return ID{tid: tid, set: true}
}

// Parse accepts any well-formed ID regardless of its prefix.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: empty")
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{tid: tid, set: true}, nil
}

func parseAs(s string, want Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	if got := parsed.Prefix(); got != want {
		return Nil, fmt.Errorf("id: %q is a %s ID, want %s", s, got, want)
	}
	return parsed, nil
}

func NewContentTypeID() ID { return New(PrefixContentType) }
func NewEntryID() ID       { return New(PrefixEntry) }
func NewWebhookID() ID     { return New(PrefixWebhook) }
func NewTaskID() ID        { return New(PrefixTask) }
func NewSiteID() ID        { return New(PrefixSite) }
func NewFormID() ID        { return New(PrefixForm) }
func NewSubmissionID() ID  { return New(PrefixSubmission) }
func NewMediaID() ID       { return New(PrefixMedia) }

// The typed parsers reject IDs of another kind, so a webhook ID can never
// be used where an entry ID is expected.

func ParseContentTypeID(s string) (ID, error) { return parseAs(s, PrefixContentType) }
func ParseEntryID(s string) (ID, error)       { return parseAs(s, PrefixEntry) }
func ParseWebhookID(s string) (ID, error)     { return parseAs(s, PrefixWebhook) }
func ParseTaskID(s string) (ID, error)        { return parseAs(s, PrefixTask) }
func ParseSiteID(s string) (ID, error)        { return parseAs(s, PrefixSite) }
func ParseFormID(s string) (ID, error)        { return parseAs(s, PrefixForm) }
func ParseSubmissionID(s string) (ID, error)  { return parseAs(s, PrefixSubmission) }
func ParseMediaID(s string) (ID, error)       { return parseAs(s, PrefixMedia) }

func (i ID) String() string {
	if !i.set {
		return ""
	}
	return i.tid.String()
}

// Prefix returns the kind of the ID, or "" for Nil.
func (i ID) Prefix() Prefix {
	if !i.set {
		return ""
	}
	return Prefix(i.tid.Prefix())
}

func (i ID) IsNil() bool { return !i.set }

// MarshalText encodes Nil as an empty string.
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText decodes an empty string to Nil.
func (i *ID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*i = Nil
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

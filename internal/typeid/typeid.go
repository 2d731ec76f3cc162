package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser        = "user"
	PrefixSession     = "sess"
	PrefixSnapshot    = "snap"
	PrefixScene       = "scene"
	PrefixObject      = "obj"
	PrefixTransformer = "tfm"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string        { return New(PrefixUser) }
func NewSessionID() string     { return New(PrefixSession) }
func NewSnapshotID() string    { return New(PrefixSnapshot) }
func NewSceneID() string       { return New(PrefixScene) }
func NewObjectID() string      { return New(PrefixObject) }
func NewTransformerID() string { return New(PrefixTransformer) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}

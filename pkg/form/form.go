// pkg/form/form.go
package form

import (
	"context"
	"mime/multipart"
	"net/url"

	"github.com/joeydtaylor/modview/pkg/store"
)

// Args are the construction arguments of a form. Data and Files are set only
// when the request carried a body.
type Args struct {
	Data       url.Values
	Files      map[string][]*multipart.FileHeader
	Instance   store.Record
	Collection []store.Record
	Extra      map[string]any
}

// Bound reports whether the form was given submitted data.
func (a Args) Bound() bool { return a.Data != nil || a.Files != nil }

// Form is a bound (or unbound) form.
type Form interface {
	IsValid() bool
	Save(ctx context.Context) error
	Errors() map[string]string
}

// Class builds forms.
type Class interface {
	New(a Args) (Form, error)
}

// SetClass marks a Class whose forms edit a collection of records rather
// than a single instance.
type SetClass interface {
	Class
	FormSet()
}

// ClassFunc adapts a function to Class.
type ClassFunc func(a Args) (Form, error)

func (f ClassFunc) New(a Args) (Form, error) { return f(a) }

// SetClassFunc adapts a function to SetClass.
type SetClassFunc func(a Args) (Form, error)

func (f SetClassFunc) New(a Args) (Form, error) { return f(a) }
func (SetClassFunc) FormSet()                   {}

// IsSet reports whether c builds form sets.
func IsSet(c Class) bool {
	_, ok := c.(SetClass)
	return ok
}

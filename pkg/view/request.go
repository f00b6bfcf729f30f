// pkg/view/request.go
package view

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/joeydtaylor/modview/pkg/codec"
)

const (
	maxMultipartMemory = 32 << 20
	maxJSONBody        = 1 << 20
)

// Stage names a pass over a pipeline.
type Stage string

const (
	StageDispatch Stage = "dispatch"
	StageGet      Stage = "get"
	StagePost     Stage = "post"
	StagePut      Stage = "put"
	StageDelete   Stage = "delete"
)

// MethodStage maps an HTTP method to its stage. ok is false for methods no
// module can answer (HEAD, PATCH, OPTIONS...).
func MethodStage(method string) (Stage, bool) {
	switch s := Stage(strings.ToLower(method)); s {
	case StageGet, StagePost, StagePut, StageDelete:
		return s, true
	default:
		return s, false
	}
}

// Request is the inbound request plus the keyword arguments forwarded by
// routing (URL captures) or by an ajax endpoint pattern.
type Request struct {
	*http.Request
	Kwargs map[string]string

	parsed *parsedBody
}

type parsedBody struct {
	fields url.Values
	files  map[string][]*multipart.FileHeader
}

// NewRequest wraps r. kwargs may be nil.
func NewRequest(r *http.Request, kwargs map[string]string) *Request {
	return &Request{Request: r, Kwargs: kwargs}
}

// WithKwargs returns a copy whose kwargs are the current ones overlaid with
// extra. The parsed body is shared.
func (r *Request) WithKwargs(extra map[string]string) *Request {
	kw := make(map[string]string, len(r.Kwargs)+len(extra))
	maps.Copy(kw, r.Kwargs)
	maps.Copy(kw, extra)
	r.body()
	return &Request{Request: r.Request, Kwargs: kw, parsed: r.parsed}
}

// Stage returns the stage named after the request method.
func (r *Request) Stage() Stage {
	s, _ := MethodStage(r.Method)
	return s
}

// IsAjax reports whether the request was issued by XMLHttpRequest/fetch
// helpers that set X-Requested-With.
func (r *Request) IsAjax() bool {
	return strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// Fields returns the parsed body fields (empty for bodiless requests).
func (r *Request) Fields() url.Values { return r.body().fields }

// Files returns uploaded files from a multipart body.
func (r *Request) Files() map[string][]*multipart.FileHeader { return r.body().files }

// HasBody reports whether the body carried any field or file.
func (r *Request) HasBody() bool {
	b := r.body()
	return len(b.fields) > 0 || len(b.files) > 0
}

func (r *Request) body() *parsedBody {
	if r.parsed != nil {
		return r.parsed
	}
	pb := &parsedBody{fields: url.Values{}}
	r.parsed = pb
	if r.Request == nil {
		return pb
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), codec.JSON.ContentType()) {
		pb.fields = r.jsonFields()
		return pb
	}
	err := r.ParseMultipartForm(maxMultipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return pb
	}
	if r.PostForm != nil {
		pb.fields = r.PostForm
	}
	if r.MultipartForm != nil {
		pb.files = r.MultipartForm.File
	}
	return pb
}

// jsonFields flattens a JSON object body into form-style fields. The body is
// restored so handlers further down can still read it.
func (r *Request) jsonFields() url.Values {
	out := url.Values{}
	if r.Body == nil {
		return out
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(b))
	if err != nil || len(b) == 0 {
		return out
	}
	var obj map[string]any
	if err := codec.JSON.Unmarshal(b, &obj); err != nil {
		return out
	}
	for k, v := range obj {
		switch x := v.(type) {
		case nil, map[string]any:
		case []any:
			for _, e := range x {
				out.Add(k, fmt.Sprint(e))
			}
		default:
			out.Add(k, fmt.Sprint(x))
		}
	}
	return out
}

package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Shape classifies a cached response.
type Shape string

const (
	ShapeSingle Shape = "single"
	ShapeList   Shape = "list"
	ShapeError  Shape = "error"
)

// Kind names a domain item type. The set of kinds an [Envelope] accepts is
// closed and fixed by the [Kinds] table it is built with.
type Kind string

// Item is a single domain object that can be cached.
type Item interface {
	ItemKind() Kind
}

// List is a homogeneous list of domain objects. ItemKind reports the kind
// of the elements even when the list is empty.
type List interface {
	ItemKind() Kind
	Items() []Item
}

// EmptyList is what [Envelope.Decode] returns for a cached list with no
// elements. An empty list carries no kind information, so it decodes to the
// same value whatever produced it. It marshals to [].
type EmptyList struct{}

func (EmptyList) ItemKind() Kind { return "" }
func (EmptyList) Items() []Item  { return nil }

// MarshalJSON encodes the list as an empty JSON array.
func (EmptyList) MarshalJSON() ([]byte, error) { return []byte("[]"), nil }

// ErrorPayload is a structured failure that is cached like any other
// response. Handlers return it as their error.
type ErrorPayload struct {
	StatusCode int             `json:"status_code"`
	Content    json.RawMessage `json:"content"`
}

// NewErrorPayload builds an ErrorPayload whose content is {"detail": detail}.
func NewErrorPayload(statusCode int, detail string) *ErrorPayload {
	content, _ := json.Marshal(map[string]string{"detail": detail})
	return &ErrorPayload{StatusCode: statusCode, Content: content}
}

func (e *ErrorPayload) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Content)
}

// Detail returns the "detail" member of the content, if any.
func (e *ErrorPayload) Detail() string {
	var c struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(e.Content, &c)
	return c.Detail
}

// GRPCStatus maps the HTTP-style status code onto a gRPC status. The status
// message carries the raw content.
func (e *ErrorPayload) GRPCStatus() *status.Status {
	return status.New(grpcCode(e.StatusCode), string(e.Content))
}

func grpcCode(httpStatus int) codes.Code {
	switch httpStatus {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusServiceUnavailable:
		return codes.Unavailable
	default:
		return codes.Unknown
	}
}

// Entry is the stored form of a response.
type Entry struct {
	Shape   Shape           `json:"shape"`
	Kind    Kind            `json:"item_kind,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	e.Payload = bytes.Clone(e.Payload)
	return e
}

// KindSpec tells the envelope how to rebuild one kind of item.
type KindSpec struct {
	// New returns a pointer to a zero item to unmarshal into.
	New func() Item
	// List wraps decoded items into the list type handlers return.
	List func(items []Item) List
}

// Kinds is the closed lookup table of item kinds.
type Kinds map[Kind]KindSpec

// Envelope encodes responses into entries and back.
type Envelope struct {
	kinds Kinds
}

// NewEnvelope creates an Envelope that accepts exactly the kinds in k.
func NewEnvelope(k Kinds) *Envelope {
	return &Envelope{kinds: k}
}

// Encode classifies resp and serializes it. Lists are checked before single
// items because a list type may report an item kind as well.
func (e *Envelope) Encode(resp any) (Entry, error) {
	switch r := resp.(type) {
	case *ErrorPayload:
		if r == nil {
			break
		}
		payload, err := json.Marshal(r)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Shape: ShapeError, Payload: payload}, nil

	case List:
		items := r.Items()
		if len(items) == 0 {
			return Entry{Shape: ShapeList, Payload: json.RawMessage("[]")}, nil
		}
		kind := r.ItemKind()
		if _, ok := e.kinds[kind]; !ok {
			return Entry{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		for _, it := range items {
			if it == nil || it.ItemKind() != kind {
				return Entry{}, fmt.Errorf("%w: mixed list of %q", ErrUnsupportedShape, kind)
			}
		}
		payload, err := json.Marshal(items)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Shape: ShapeList, Kind: kind, Payload: payload}, nil

	case Item:
		kind := r.ItemKind()
		if _, ok := e.kinds[kind]; !ok {
			return Entry{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		payload, err := json.Marshal(r)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Shape: ShapeSingle, Kind: kind, Payload: payload}, nil
	}
	return Entry{}, fmt.Errorf("%w: %T", ErrUnsupportedShape, resp)
}

// Decode rebuilds the response stored in entry. Error entries decode to an
// *ErrorPayload value.
func (e *Envelope) Decode(entry Entry) (any, error) {
	switch entry.Shape {
	case ShapeError:
		p := new(ErrorPayload)
		if err := json.Unmarshal(entry.Payload, p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
		}
		return p, nil

	case ShapeList:
		var raws []json.RawMessage
		if err := json.Unmarshal(entry.Payload, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
		}
		if len(raws) == 0 {
			return EmptyList{}, nil
		}
		spec, ok := e.kinds[entry.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, entry.Kind)
		}
		items := make([]Item, 0, len(raws))
		for _, raw := range raws {
			it := spec.New()
			if err := json.Unmarshal(raw, it); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
			}
			items = append(items, it)
		}
		return spec.List(items), nil

	case ShapeSingle:
		spec, ok := e.kinds[entry.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, entry.Kind)
		}
		it := spec.New()
		if err := json.Unmarshal(entry.Payload, it); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
		}
		return it, nil
	}
	return nil, fmt.Errorf("%w: shape %q", ErrCorruptEntry, entry.Shape)
}

package server

import (
	"context"
	"sync"

	"github.com/modelctx/mcphost/protocol"
)

// Resource is a named, URI-addressed, readable piece of data. URIs are exact
// keys; no template matching is performed.
type Resource interface {
	URI() string
	Name() string
	Description() string
	MimeType() string
	Read(ctx context.Context) (string, error)
}

// ResourceFunc is the handler signature for func-backed resources.
type ResourceFunc func(ctx context.Context) (string, error)

// FuncResource is a Resource backed by a plain function.
type FuncResource struct {
	uri         string
	name        string
	description string
	mimeType    string
	binary      bool
	fn          ResourceFunc
}

// ResourceOption configures a FuncResource.
type ResourceOption func(*FuncResource)

// WithResourceName sets a human-readable name.
func WithResourceName(name string) ResourceOption {
	return func(r *FuncResource) { r.name = name }
}

// WithResourceDescription sets the description.
func WithResourceDescription(desc string) ResourceOption {
	return func(r *FuncResource) { r.description = desc }
}

// WithResourceMimeType sets the MIME type of the content.
func WithResourceMimeType(mimeType string) ResourceOption {
	return func(r *FuncResource) { r.mimeType = mimeType }
}

// WithResourceBinary marks the content as base64-encoded binary; it is
// delivered on the wire as a blob instead of text.
func WithResourceBinary() ResourceOption {
	return func(r *FuncResource) { r.binary = true }
}

// NewResource creates a func-backed resource for the given URI.
func NewResource(uri string, fn ResourceFunc, opts ...ResourceOption) *FuncResource {
	r := &FuncResource{uri: uri, fn: fn}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *FuncResource) URI() string         { return r.uri }
func (r *FuncResource) Name() string        { return r.name }
func (r *FuncResource) Description() string { return r.description }
func (r *FuncResource) MimeType() string    { return r.mimeType }

// Read loads the resource content.
func (r *FuncResource) Read(ctx context.Context) (string, error) {
	return r.fn(ctx)
}

// BinaryResource marks resources whose content is base64-encoded binary.
// Resources implementing it with Binary() == true are delivered as blobs.
type BinaryResource interface {
	Binary() bool
}

// Binary reports whether the content is base64-encoded binary.
func (r *FuncResource) Binary() bool { return r.binary }

// ResourceRegistry is an in-memory store of resources keyed by URI.
// Registration is an upsert; all operations are safe under concurrent
// callers.
type ResourceRegistry struct {
	mu        sync.RWMutex
	resources map[string]Resource
}

// NewResourceRegistry creates an empty resource registry.
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{resources: make(map[string]Resource)}
}

// Register adds or replaces the resource under its URI.
func (r *ResourceRegistry) Register(res Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[res.URI()] = res
}

// Unregister removes the resource at the URI, reporting whether it existed.
func (r *ResourceRegistry) Unregister(uri string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.resources[uri]
	delete(r.resources, uri)
	return ok
}

// Has reports whether a resource is registered at the URI.
func (r *ResourceRegistry) Has(uri string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resources[uri]
	return ok
}

// Count returns the number of registered resources.
func (r *ResourceRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}

// Get retrieves a resource by URI.
func (r *ResourceRegistry) Get(uri string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[uri]
	return res, ok
}

// List returns wire-format descriptors for all registered resources.
func (r *ResourceRegistry) List() []protocol.ResourceDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]protocol.ResourceDescriptor, 0, len(r.resources))
	for _, res := range r.resources {
		result = append(result, protocol.ResourceDescriptor{
			URI:         res.URI(),
			Name:        res.Name(),
			Description: res.Description(),
			MimeType:    res.MimeType(),
		})
	}
	return result
}

// ReadResource reads the resource at the URI and wraps the content for the
// wire. A missing URI is an invalid-params protocol error: resource
// existence is addressable metadata, not a runtime failure of the resource's
// own logic. A failing read is an internal error.
func (r *ResourceRegistry) ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	res, ok := r.Get(uri)
	if !ok {
		return nil, protocol.NewInvalidParams("resource not found: " + uri)
	}

	content, err := res.Read(ctx)
	if err != nil {
		return nil, protocol.NewInternalError(err.Error())
	}

	contents := protocol.ResourceContents{
		URI:      uri,
		MimeType: res.MimeType(),
	}
	if b, ok := res.(BinaryResource); ok && b.Binary() {
		contents.Blob = content
	} else {
		contents.Text = content
	}

	return &protocol.ReadResourceResult{
		Contents: []protocol.ResourceContents{contents},
	}, nil
}

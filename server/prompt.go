package server

import (
	"context"
	"sync"

	"github.com/modelctx/mcphost/protocol"
)

// Prompt is a named, parameterized template that renders to a list of
// conversational messages.
type Prompt interface {
	Name() string
	Description() string
	Arguments() []protocol.PromptArgument
	Render(ctx context.Context, args map[string]string) ([]protocol.PromptMessage, error)
}

// PromptFunc is the handler signature for func-backed prompts.
type PromptFunc func(ctx context.Context, args map[string]string) ([]protocol.PromptMessage, error)

// FuncPrompt is a Prompt backed by a plain function.
type FuncPrompt struct {
	name        string
	description string
	arguments   []protocol.PromptArgument
	fn          PromptFunc
}

// NewPrompt creates a func-backed prompt.
func NewPrompt(name, description string, arguments []protocol.PromptArgument, fn PromptFunc) *FuncPrompt {
	return &FuncPrompt{
		name:        name,
		description: description,
		arguments:   arguments,
		fn:          fn,
	}
}

func (p *FuncPrompt) Name() string                         { return p.name }
func (p *FuncPrompt) Description() string                  { return p.description }
func (p *FuncPrompt) Arguments() []protocol.PromptArgument { return p.arguments }

// Render executes the prompt template.
func (p *FuncPrompt) Render(ctx context.Context, args map[string]string) ([]protocol.PromptMessage, error) {
	return p.fn(ctx, args)
}

// UserMessage creates a user-role prompt message with text content.
func UserMessage(text string) protocol.PromptMessage {
	return protocol.PromptMessage{Role: "user", Content: protocol.TextContent(text)}
}

// AssistantMessage creates an assistant-role prompt message with text content.
func AssistantMessage(text string) protocol.PromptMessage {
	return protocol.PromptMessage{Role: "assistant", Content: protocol.TextContent(text)}
}

// PromptRegistry is an in-memory store of prompts keyed by name.
// Registration is an upsert; all operations are safe under concurrent
// callers.
type PromptRegistry struct {
	mu      sync.RWMutex
	prompts map[string]Prompt
}

// NewPromptRegistry creates an empty prompt registry.
func NewPromptRegistry() *PromptRegistry {
	return &PromptRegistry{prompts: make(map[string]Prompt)}
}

// Register adds or replaces the prompt under its name.
func (r *PromptRegistry) Register(p Prompt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[p.Name()] = p
}

// Unregister removes the named prompt, reporting whether it existed.
func (r *PromptRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.prompts[name]
	delete(r.prompts, name)
	return ok
}

// Has reports whether a prompt is registered under the name.
func (r *PromptRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.prompts[name]
	return ok
}

// Count returns the number of registered prompts.
func (r *PromptRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}

// Get retrieves a prompt by name.
func (r *PromptRegistry) Get(name string) (Prompt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prompts[name]
	return p, ok
}

// List returns wire-format descriptors for all registered prompts.
func (r *PromptRegistry) List() []protocol.PromptDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]protocol.PromptDescriptor, 0, len(r.prompts))
	for _, p := range r.prompts {
		result = append(result, protocol.PromptDescriptor{
			Name:        p.Name(),
			Description: p.Description(),
			Arguments:   p.Arguments(),
		})
	}
	return result
}

// GetPrompt renders the named prompt. A missing prompt or a missing required
// argument is an invalid-params protocol error; so is a render failure,
// which in practice means the arguments did not satisfy the template.
func (r *PromptRegistry) GetPrompt(ctx context.Context, name string, args map[string]string) (*protocol.GetPromptResult, error) {
	p, ok := r.Get(name)
	if !ok {
		return nil, protocol.NewInvalidParams("prompt not found: " + name)
	}

	for _, arg := range p.Arguments() {
		if arg.Required {
			if _, ok := args[arg.Name]; !ok {
				return nil, protocol.NewInvalidParams("missing required argument: " + arg.Name)
			}
		}
	}

	messages, err := p.Render(ctx, args)
	if err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	return &protocol.GetPromptResult{
		Description: p.Description(),
		Messages:    messages,
	}, nil
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/google/uuid"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/logging"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/protocol"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/registry"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/transport"
)

// Client talks to one Jolokia agent and keeps the MBeans it has listed in a
// Registry. A Client is safe for concurrent use.
type Client struct {
	transport    transport.Transport
	paths        *protocol.PathBuilder
	registry     *registry.Registry
	logger       logging.Logger
	name         string
	newRequestID func() string

	agentInfo atomic.Pointer[protocol.AgentInfo]
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger; the default discards everything
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithName sets the component name used in logs
func WithName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

// WithRegistry shares reg instead of creating a new registry
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Client) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// WithRequestIDGenerator replaces the UUID request ID generator
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if gen != nil {
			c.newRequestID = gen
		}
	}
}

// New creates a client for the agent at baseURL, for example
// http://localhost:8778/jolokia.
func New(baseURL string, t transport.Transport, opts ...Option) (*Client, error) {
	if t == nil {
		return nil, jerrors.MissingParameter("transport")
	}

	base, err := protocol.ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		transport:    t,
		paths:        protocol.NewPathBuilder(base),
		registry:     registry.New(),
		logger:       logging.NewNopLogger(),
		name:         "jolokia-client",
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithFields(logging.String("component", c.name))

	return c, nil
}

// BaseURL returns the agent URL including the mimeType query
func (c *Client) BaseURL() string {
	return c.paths.Base().String()
}

// Registry returns the MBeans loaded so far
func (c *Client) Registry() *registry.Registry {
	return c.registry
}

// AgentInfo returns the result of the last successful LoadVersion, or nil
func (c *Client) AgentInfo() *protocol.AgentInfo {
	return c.agentInfo.Load()
}

// AgentVersion returns the agent version from the last successful
// LoadVersion, or "" before one has completed.
func (c *Client) AgentVersion() string {
	if info := c.agentInfo.Load(); info != nil {
		return info.Agent
	}
	return ""
}

// Close closes the transport
func (c *Client) Close() error {
	return c.transport.Close()
}

// LoadVersion fetches the agent version and stores it
func (c *Client) LoadVersion(ctx context.Context) (string, error) {
	info, err := call[protocol.AgentInfo](ctx, c, protocol.EndpointVersion, c.paths.Version())
	if err != nil {
		return "", err
	}

	c.agentInfo.Store(&info)
	c.logger.WithContext(ctx).Debug("agent version loaded",
		logging.String("agent", info.Agent),
		logging.String("protocol", info.Protocol),
	)
	return info.Agent, nil
}

// LoadList lists MBeans and merges them into the registry. With both domain
// and mbean empty every domain the agent returns is replaced; with only
// domain set that domain is replaced; with both set the single MBean is
// inserted or replaced. The registry is untouched when an error is returned.
func (c *Client) LoadList(ctx context.Context, domain, mbean string) error {
	u, err := c.paths.List(domain, mbean)
	if err != nil {
		return err
	}
	logger := c.logger.WithContext(ctx)

	switch {
	case mbean != "":
		m, err := call[*model.MBean](ctx, c, protocol.EndpointList, u)
		if err != nil {
			return err
		}
		if m == nil {
			return jerrors.MBeanNotFound(domain + ":" + mbean)
		}
		m.Update(domain, mbean)
		if err := ctx.Err(); err != nil {
			return err
		}
		c.registry.Put(m)
		logger.Info("registry merged",
			logging.String("scope", string(registry.ScopeMBean)),
			logging.String("mbean", m.FullyQualifiedName()),
		)

	case domain != "":
		mbeans, err := call[model.Domain](ctx, c, protocol.EndpointList, u)
		if err != nil {
			return err
		}
		mbeans.Update(domain)
		if err := ctx.Err(); err != nil {
			return err
		}
		c.registry.ReplaceDomain(domain, mbeans)
		logger.Info("registry merged",
			logging.String("scope", string(registry.ScopeDomain)),
			logging.String("domain", domain),
			logging.Int("mbeans", len(mbeans)),
		)

	default:
		topology, err := call[model.Topology](ctx, c, protocol.EndpointList, u)
		if err != nil {
			return err
		}
		topology.Update()
		if err := ctx.Err(); err != nil {
			return err
		}
		c.registry.ReplaceAll(topology)
		logger.Info("registry merged",
			logging.String("scope", string(registry.ScopeFull)),
			logging.Int("domains", len(topology)),
			logging.Int("mbeans", topology.Count()),
		)
	}

	return nil
}

// GetMBean lists a single MBean without storing it in the registry
func (c *Client) GetMBean(ctx context.Context, domain, name string) (*model.MBean, error) {
	if domain == "" {
		return nil, jerrors.MissingParameter("domain")
	}
	if name == "" {
		return nil, jerrors.MissingParameter("name")
	}

	u, err := c.paths.List(domain, name)
	if err != nil {
		return nil, err
	}
	m, err := call[*model.MBean](ctx, c, protocol.EndpointList, u)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, jerrors.MBeanNotFound(domain + ":" + name)
	}
	m.Update(domain, name)
	return m, nil
}

// Refresh loads the version and then the full MBean list. The first failure
// stops the sequence.
func (c *Client) Refresh(ctx context.Context) error {
	if _, err := c.LoadVersion(ctx); err != nil {
		return err
	}
	return c.LoadList(ctx, "", "")
}

// ReadRaw reads attr and returns the undecoded value
func (c *Client) ReadRaw(ctx context.Context, attr *model.Attribute) (json.RawMessage, error) {
	return Read[json.RawMessage](ctx, c, attr)
}

// ReadInto reads attr and decodes the value into dst. A nil dst discards
// the value.
func (c *Client) ReadInto(ctx context.Context, attr *model.Attribute, dst interface{}) error {
	raw, err := c.ReadRaw(ctx, attr)
	if err != nil {
		return err
	}
	return decodeInto(raw, dst)
}

// Read reads attr and decodes the value as T
func Read[T any](ctx context.Context, c *Client, attr *model.Attribute) (T, error) {
	var zero T
	if err := validateAttribute(attr); err != nil {
		return zero, err
	}
	return call[T](ctx, c, protocol.EndpointRead, c.paths.Read(attr.Parent, attr.Name))
}

// Write sets attr to value and returns the value reported by the agent,
// usually the previous attribute value.
func (c *Client) Write(ctx context.Context, attr *model.Attribute, value string) (interface{}, error) {
	if err := validateAttribute(attr); err != nil {
		return nil, err
	}
	return call[interface{}](ctx, c, protocol.EndpointWrite, c.paths.Write(attr.Parent, attr.Name, value))
}

// ExecuteRaw invokes op and returns the undecoded result
func (c *Client) ExecuteRaw(ctx context.Context, op *model.Operation, args ...string) (json.RawMessage, error) {
	return Execute[json.RawMessage](ctx, c, op, args...)
}

// ExecuteInto invokes op and decodes the result into dst. A nil dst
// discards the result, which suits void operations.
func (c *Client) ExecuteInto(ctx context.Context, op *model.Operation, dst interface{}, args ...string) error {
	raw, err := c.ExecuteRaw(ctx, op, args...)
	if err != nil {
		return err
	}
	return decodeInto(raw, dst)
}

// Execute invokes op with args and decodes the result as T. The number of
// args must equal the number of declared arguments; a mismatch fails
// without contacting the agent. Pass protocol.NullSentinel for a null
// argument.
func Execute[T any](ctx context.Context, c *Client, op *model.Operation, args ...string) (T, error) {
	var zero T
	if err := validateOperation(op, args); err != nil {
		return zero, err
	}
	return call[T](ctx, c, protocol.EndpointExec, c.paths.Exec(op.Parent, op.Name, args...))
}

// EnableAttributeHistory asks the agent to keep read history for attr
func (c *Client) EnableAttributeHistory(ctx context.Context, attr *model.Attribute, limit protocol.HistoryLimit) error {
	if err := validateAttribute(attr); err != nil {
		return err
	}
	if err := limit.Validate(); err != nil {
		return err
	}
	_, err := call[json.RawMessage](ctx, c, protocol.EndpointExec, c.paths.AttributeHistory(attr.Parent, attr.Name, limit))
	return err
}

// EnableOperationHistory asks the agent to keep result history for op
func (c *Client) EnableOperationHistory(ctx context.Context, op *model.Operation, limit protocol.HistoryLimit) error {
	if err := validateOperationRef(op); err != nil {
		return err
	}
	if err := limit.Validate(); err != nil {
		return err
	}
	_, err := call[json.RawMessage](ctx, c, protocol.EndpointExec, c.paths.OperationHistory(op.Parent, op.Name, limit))
	return err
}

// ResetHistory clears every history entry kept by the agent
func (c *Client) ResetHistory(ctx context.Context) error {
	_, err := call[json.RawMessage](ctx, c, protocol.EndpointExec, c.paths.ResetHistory())
	return err
}

// call sends one request and decodes the envelope value as T
func call[T any](ctx context.Context, c *Client, operation string, u *url.URL) (T, error) {
	var zero T

	ctx = c.withRequestID(ctx)
	c.logger.WithContext(ctx).Debug("sending request",
		logging.String("operation", operation),
		logging.String("path", u.EscapedPath()),
	)
	body, err := c.transport.SendRequest(ctx, transport.NewRequest(operation, u))
	if err != nil {
		return zero, c.fail(ctx, operation, u, err)
	}

	value, err := protocol.DecodeValue[T](body)
	if err != nil {
		return zero, c.fail(ctx, operation, u, err)
	}
	return value, nil
}

func (c *Client) withRequestID(ctx context.Context) context.Context {
	if logging.RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return logging.ContextWithRequestID(ctx, c.newRequestID())
}

func (c *Client) fail(ctx context.Context, operation string, u *url.URL, err error) error {
	err = jerrors.WithContext(err, &jerrors.Context{
		RequestID: logging.RequestIDFromContext(ctx),
		Operation: operation,
		Component: c.name,
		Endpoint:  u.Redacted(),
	})
	c.logger.WithContext(ctx).Warn("request failed",
		logging.String("operation", operation),
		logging.ErrorField(err),
	)
	return fmt.Errorf("%s failed: %w", operation, err)
}

func decodeInto(raw json.RawMessage, dst interface{}) error {
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return jerrors.NewMalformedResponseError("value does not match the expected shape", raw, err)
	}
	return nil
}

func validateAttribute(attr *model.Attribute) error {
	if attr == nil {
		return jerrors.MissingParameter("attribute")
	}
	if attr.Parent == "" {
		return jerrors.MissingParameter("attribute.parent")
	}
	if attr.Name == "" {
		return jerrors.MissingParameter("attribute.name")
	}
	return nil
}

func validateOperationRef(op *model.Operation) error {
	if op == nil {
		return jerrors.MissingParameter("operation")
	}
	if op.Parent == "" {
		return jerrors.MissingParameter("operation.parent")
	}
	if op.Name == "" {
		return jerrors.MissingParameter("operation.name")
	}
	return nil
}

func validateOperation(op *model.Operation, args []string) error {
	if err := validateOperationRef(op); err != nil {
		return err
	}
	if len(args) != len(op.Arguments) {
		return jerrors.NewArgumentMismatchError(op.Name, len(op.Arguments), len(args))
	}
	return nil
}

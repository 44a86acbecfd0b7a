package model

import (
	"fmt"
	"sort"
	"strings"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
)

// Type defaults applied when the agent omits a type.
const (
	DefaultAttributeType = "java.lang.String"
	DefaultArgumentType  = "java.lang.String"
	DefaultReturnType    = "java.lang.String"
)

// Argument describes one formal parameter of an Operation
type Argument struct {
	Name        string `json:"name"`
	Description string `json:"desc"`
	Type        string `json:"type"`
}

// Attribute describes a readable, possibly writable, MBean property
type Attribute struct {
	Name        string `json:"-"`
	Description string `json:"desc"`
	Type        string `json:"type"`
	Writable    bool   `json:"rw"`
	// Parent is the FQN of the owning MBean
	Parent string `json:"-"`
}

// Access returns "rw" for writable attributes and "r" otherwise
func (a *Attribute) Access() string {
	if a.Writable {
		return "rw"
	}
	return "r"
}

// Operation describes a callable MBean operation. Arguments are positional.
type Operation struct {
	Name        string     `json:"-"`
	Description string     `json:"desc"`
	Arguments   []Argument `json:"args"`
	ReturnType  string     `json:"ret"`
	// Parent is the FQN of the owning MBean
	Parent string `json:"-"`
}

// Signature renders the operation as name(type, ...) : returnType
func (o *Operation) Signature() string {
	types := make([]string, len(o.Arguments))
	for i, a := range o.Arguments {
		types[i] = a.Type
	}
	return fmt.Sprintf("%s(%s) : %s", o.Name, strings.Join(types, ", "), o.ReturnType)
}

// MBean is a managed bean with its attributes and operations keyed by name.
// Overloaded operations are never present in Operations.
type MBean struct {
	Name        string                `json:"-"`
	Domain      string                `json:"-"`
	Description string                `json:"desc"`
	Class       string                `json:"class,omitempty"`
	Attributes  map[string]*Attribute `json:"attr"`
	Operations  map[string]*Operation `json:"op"`
}

// FullyQualifiedName returns domain:name
func (m *MBean) FullyQualifiedName() string {
	return m.Domain + ":" + m.Name
}

// Update assigns domain and name, then sets every child's Name to its map key
// and its Parent to the new FQN. Calling it repeatedly with the same
// arguments yields the same result.
func (m *MBean) Update(domain, name string) {
	m.Domain = domain
	m.Name = name
	fqn := m.FullyQualifiedName()

	if m.Attributes == nil {
		m.Attributes = make(map[string]*Attribute)
	}
	for key, attr := range m.Attributes {
		if attr == nil {
			delete(m.Attributes, key)
			continue
		}
		attr.Name = key
		attr.Parent = fqn
	}

	if m.Operations == nil {
		m.Operations = make(map[string]*Operation)
	}
	for key, op := range m.Operations {
		if op == nil {
			delete(m.Operations, key)
			continue
		}
		op.Name = key
		op.Parent = fqn
	}
}

// Attribute looks up an attribute by name
func (m *MBean) Attribute(name string) (*Attribute, error) {
	if attr, ok := m.Attributes[name]; ok {
		return attr, nil
	}
	return nil, jerrors.AttributeNotFound(m.FullyQualifiedName(), name)
}

// Operation looks up an operation by name
func (m *MBean) Operation(name string) (*Operation, error) {
	if op, ok := m.Operations[name]; ok {
		return op, nil
	}
	return nil, jerrors.OperationNotFound(m.FullyQualifiedName(), name)
}

// AttributeNames returns the attribute names in sorted order
func (m *MBean) AttributeNames() []string {
	names := make([]string, 0, len(m.Attributes))
	for name := range m.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OperationNames returns the operation names in sorted order
func (m *MBean) OperationNames() []string {
	names := make([]string, 0, len(m.Operations))
	for name := range m.Operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFQN splits a fully-qualified MBean name at its first ":"
func ParseFQN(fqn string) (domain, name string, err error) {
	domain, name, ok := strings.Cut(fqn, ":")
	if !ok || domain == "" || name == "" {
		return "", "", jerrors.InvalidParameter("fqn", fqn, "expected domain:name")
	}
	return domain, name, nil
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Domain is the list value of one domain: MBean name to MBean
type Domain map[string]*MBean

// Topology is the value of a full list: domain to MBean name to MBean
type Topology map[string]Domain

// UnmarshalJSON applies the default argument type
func (a *Argument) UnmarshalJSON(data []byte) error {
	type plain Argument
	aux := plain{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Type == "" {
		aux.Type = DefaultArgumentType
	}
	*a = Argument(aux)
	return nil
}

// UnmarshalJSON applies the default attribute type
func (a *Attribute) UnmarshalJSON(data []byte) error {
	type plain Attribute
	aux := plain{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Type == "" {
		aux.Type = DefaultAttributeType
	}
	*a = Attribute(aux)
	return nil
}

// UnmarshalJSON applies the default return type
func (o *Operation) UnmarshalJSON(data []byte) error {
	type plain Operation
	aux := plain{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ReturnType == "" {
		aux.ReturnType = DefaultReturnType
	}
	if aux.Arguments == nil {
		aux.Arguments = []Argument{}
	}
	*o = Operation(aux)
	return nil
}

// UnmarshalJSON decodes an MBean, skipping overloaded operations. The agent
// lists an overloaded operation as an array of signatures instead of a
// single object.
func (m *MBean) UnmarshalJSON(data []byte) error {
	var aux struct {
		Description string                     `json:"desc"`
		Class       string                     `json:"class"`
		Attributes  map[string]*Attribute      `json:"attr"`
		Operations  map[string]json.RawMessage `json:"op"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	ops := make(map[string]*Operation, len(aux.Operations))
	for name, raw := range aux.Operations {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		op := &Operation{}
		if err := json.Unmarshal(trimmed, op); err != nil {
			return fmt.Errorf("operation %s: %w", name, err)
		}
		ops[name] = op
	}

	attrs := aux.Attributes
	if attrs == nil {
		attrs = make(map[string]*Attribute)
	}

	*m = MBean{
		Name:        m.Name,
		Domain:      m.Domain,
		Description: aux.Description,
		Class:       aux.Class,
		Attributes:  attrs,
		Operations:  ops,
	}
	return nil
}

// Update calls Update on every MBean with the given domain and its map key
func (d Domain) Update(domain string) {
	for name, mbean := range d {
		if mbean == nil {
			delete(d, name)
			continue
		}
		mbean.Update(domain, name)
	}
}

// Update calls Update on every domain with its map key
func (t Topology) Update() {
	for domain, mbeans := range t {
		if mbeans == nil {
			t[domain] = Domain{}
			continue
		}
		mbeans.Update(domain)
	}
}

// Count returns the number of MBeans across all domains
func (t Topology) Count() int {
	n := 0
	for _, mbeans := range t {
		n += len(mbeans)
	}
	return n
}

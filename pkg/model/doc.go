// Package model contains the MBean metadata types decoded from Jolokia list
// responses.
//
// An MBean is identified by its domain and its key-property name; the two
// joined by ":" form its fully-qualified name (FQN). Every Attribute and
// Operation keeps the FQN of its owning MBean in Parent, which is what read,
// write and exec requests address. Update re-establishes that linkage and
// must be called whenever an MBean's domain or name is assigned.
package model

// Package registry holds the client's view of the MBeans discovered on an
// agent. It is mutated only through the three list-scope merge operations and
// is safe for concurrent use.
package registry

import (
	"sort"
	"sync"

	jerrors "github.com/ajitpratap0/jolokia-sdk-go/pkg/errors"
	"github.com/ajitpratap0/jolokia-sdk-go/pkg/model"
)

// Scope identifies which part of the registry a list response replaces
type Scope string

const (
	ScopeFull   Scope = "full"
	ScopeDomain Scope = "domain"
	ScopeMBean  Scope = "mbean"
)

// Registry maps domain to MBean name to MBean.
// Returned MBeans are shared with the registry and must be treated as read-only.
type Registry struct {
	mu      sync.RWMutex
	domains map[string]map[string]*model.MBean
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		domains: make(map[string]map[string]*model.MBean),
	}
}

// ReplaceAll merges a full list response: each domain present in topology
// replaces its bucket wholesale. Domains absent from topology are left alone.
// MBeans must already be updated.
func (r *Registry) ReplaceAll(topology model.Topology) {
	buckets := make(map[string]map[string]*model.MBean, len(topology))
	for domain, mbeans := range topology {
		buckets[domain] = copyBucket(mbeans)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for domain, bucket := range buckets {
		r.domains[domain] = bucket
	}
}

// ReplaceDomain merges a domain-scope list response by replacing the bucket
func (r *Registry) ReplaceDomain(domain string, mbeans model.Domain) {
	bucket := copyBucket(mbeans)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.domains[domain] = bucket
}

// Put merges an MBean-scope list response by inserting or replacing one entry,
// creating the domain bucket if needed.
func (r *Registry) Put(mbean *model.MBean) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.domains[mbean.Domain]
	if !ok {
		bucket = make(map[string]*model.MBean)
		r.domains[mbean.Domain] = bucket
	}
	bucket[mbean.Name] = mbean
}

// Domains returns the known domain names, sorted
func (r *Registry) Domains() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.domains))
	for name := range r.domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Domain returns a copy of the domain's MBean-name map
func (r *Registry) Domain(domain string) (map[string]*model.MBean, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, ok := r.domains[domain]
	if !ok {
		return nil, false
	}
	return copyBucket(bucket), true
}

// MBean returns one MBean by domain and name
func (r *Registry) MBean(domain, name string) (*model.MBean, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if mbean, ok := r.domains[domain][name]; ok {
		return mbean, nil
	}
	return nil, jerrors.MBeanNotFound(domain + ":" + name)
}

// Lookup returns one MBean by its fully-qualified name
func (r *Registry) Lookup(fqn string) (*model.MBean, error) {
	domain, name, err := model.ParseFQN(fqn)
	if err != nil {
		return nil, err
	}
	return r.MBean(domain, name)
}

// Len returns the number of MBeans across all domains
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, bucket := range r.domains {
		n += len(bucket)
	}
	return n
}

// Snapshot returns a copy of the domain and name maps. MBeans are shared.
func (r *Registry) Snapshot() model.Topology {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(model.Topology, len(r.domains))
	for domain, bucket := range r.domains {
		out[domain] = copyBucket(bucket)
	}
	return out
}

// Clear removes every domain
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.domains = make(map[string]map[string]*model.MBean)
}

func copyBucket(mbeans map[string]*model.MBean) map[string]*model.MBean {
	out := make(map[string]*model.MBean, len(mbeans))
	for name, mbean := range mbeans {
		if mbean != nil {
			out[name] = mbean
		}
	}
	return out
}

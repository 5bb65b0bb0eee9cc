package domain

import "slices"

// NetworkAttachment describes a container's membership in one named network.
type NetworkAttachment struct {
	Address string
	Aliases []string
}

// ContainerRecord is the synchronizer's view of a single container. It is
// rebuilt wholesale from an inspect response; fields are never merged in
// place.
type ContainerRecord struct {
	Id            string
	Name          string
	GlobalAddress string
	Networks      map[string]NetworkAttachment
	DomainTokens  []string
	Running       bool
}

// Clone returns a deep copy, so a caller can hold a record outside the state
// store's lock without sharing its nested map and slices.
func (r ContainerRecord) Clone() ContainerRecord {
	out := r
	if r.Networks != nil {
		out.Networks = make(map[string]NetworkAttachment, len(r.Networks))
		for name, attachment := range r.Networks {
			attachment.Aliases = slices.Clone(attachment.Aliases)
			out.Networks[name] = attachment
		}
	}
	out.DomainTokens = slices.Clone(r.DomainTokens)
	return out
}

// Active reports whether the record qualifies for the state store: the
// container must be running and expose at least one resolvable address.
func (r ContainerRecord) Active() bool {
	return r.Running && (r.GlobalAddress != "" || len(r.Networks) > 0)
}

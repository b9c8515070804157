/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

// RegisterIndexMap associates key templates with an alias. Engines that
// derive storage keys from templates (the DynamoDB engine) use them in place
// of their defaults. Templates reference fields with {Name} macros; {Alias}
// and {ID} are always available.
func (r *TypeRegistry) RegisterIndexMap(alias string, idxMap map[string]string) {
	cp := make(map[string]string, len(idxMap))
	for k, v := range idxMap {
		cp[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexMaps[alias] = cp
}

// IndexMap returns the key templates registered for alias, if any.
func (r *TypeRegistry) IndexMap(alias string) (map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.indexMaps[alias]
	return m, ok
}

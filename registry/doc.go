/*
Package registry maps Go types to the descriptors memstore stores them by.

A TypeRegistry is created explicitly and passed to the operations template
and to engines that serialize values. Each registered type names the cache
alias its values live in, the type name written into serialized envelopes
and, optionally, accessors for its identifier and attributes:

	reg := registry.NewTypeRegistry()
	registry.MustRegister(reg, registry.Descriptor[Person]{
	    Alias: "people",
	    ID:    func(p Person) string { return p.ID },
	    SetID: func(p *Person, id string) { p.ID = id },
	})

Several types may share an alias, and an interface type may be registered
for that alias to read every value stored under it.

Attributes default to reflection over exported fields, addressable by json
tag name or Go field name. Decode rebuilds a value from its type name for
engines that store values in serialized form.

Index maps attach key templates to an alias for engines that build storage
keys from templates:

	reg.RegisterIndexMap("people", map[string]string{
	    "PK": "PEOPLE",
	    "SK": "PERSON#{ID}",
	})
*/
package registry

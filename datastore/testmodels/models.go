/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package testmodels holds the entity types used by memstore tests and the demo.
package testmodels

import (
	"github.com/go-openapi/strfmt"

	"github.com/suparena/memstore/registry"
)

// Person is stored under the "people" alias.
type Person struct {

	// Unique identifier of the person.
	// Required: true
	ID string `json:"id" msgpack:"id"`

	// Display name.
	// Required: true
	Name string `json:"name" msgpack:"name"`

	// Age in years.
	Age int `json:"age" msgpack:"age"`

	// Contact address.
	Email *string `json:"email,omitempty" msgpack:"email,omitempty"`

	// Format: date
	Birthday *strfmt.Date `json:"birthday,omitempty" msgpack:"birthday,omitempty"`

	// Timestamp when the person was created.
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"createdAt,omitempty" msgpack:"createdAt,omitempty"`
}

// StaffMember is implemented by every type stored under the "staff" alias.
type StaffMember interface {
	StaffID() string
	DisplayName() string
}

// Employee is a salaried staff member.
type Employee struct {
	ID         string          `json:"id" msgpack:"id"`
	Name       string          `json:"name" msgpack:"name"`
	Department string          `json:"department" msgpack:"department"`
	Salary     float64         `json:"salary" msgpack:"salary"`
	HiredAt    strfmt.DateTime `json:"hiredAt" msgpack:"hiredAt"`
}

func (e Employee) StaffID() string     { return e.ID }
func (e Employee) DisplayName() string { return e.Name }

// Contractor is an hourly staff member.
type Contractor struct {
	ID         string  `json:"id" msgpack:"id"`
	Name       string  `json:"name" msgpack:"name"`
	Agency     string  `json:"agency" msgpack:"agency"`
	HourlyRate float64 `json:"hourlyRate" msgpack:"hourlyRate"`
}

func (c Contractor) StaffID() string     { return c.ID }
func (c Contractor) DisplayName() string { return c.Name }

// Register adds descriptors for every test model to reg.
func Register(reg *registry.TypeRegistry) {
	registry.MustRegister(reg, registry.Descriptor[Person]{
		Alias: "people",
		ID:    func(p Person) string { return p.ID },
		SetID: func(p *Person, id string) { p.ID = id },
	})
	registry.MustRegister(reg, registry.Descriptor[Employee]{
		Alias: "staff",
		ID:    func(e Employee) string { return e.ID },
		SetID: func(e *Employee, id string) { e.ID = id },
	})
	registry.MustRegister(reg, registry.Descriptor[Contractor]{
		Alias: "staff",
		ID:    func(c Contractor) string { return c.ID },
		SetID: func(c *Contractor, id string) { c.ID = id },
		Attributes: func(c Contractor) map[string]any {
			return map[string]any{
				"id":     c.ID,
				"name":   c.Name,
				"agency": c.Agency,
				"salary": c.HourlyRate * 2080,
			}
		},
	})
	registry.MustRegister(reg, registry.Descriptor[StaffMember]{
		Alias: "staff",
		ID:    func(s StaffMember) string { return s.StaffID() },
	})
}

// NewRegistry returns a registry with every test model registered.
func NewRegistry() *registry.TypeRegistry {
	reg := registry.NewTypeRegistry()
	Register(reg)
	return reg
}

// People returns five people in a fixed order.
func People() []Person {
	email := "grace@example.com"
	return []Person{
		{ID: "p1", Name: "Ada", Age: 36},
		{ID: "p2", Name: "Grace", Age: 45, Email: &email},
		{ID: "p3", Name: "Alan", Age: 41},
		{ID: "p4", Name: "Barbara", Age: 29},
		{ID: "p5", Name: "Edsger", Age: 72},
	}
}

package models

import "time"

// HealthStatus enumerates the health states tracked for an animal.
type HealthStatus string

const (
	HealthHealthy          HealthStatus = "Healthy"
	HealthSick             HealthStatus = "Sick"
	HealthUnderObservation HealthStatus = "Under Observation"
)

// DefaultAnimalType is used when a new record does not name a type.
const DefaultAnimalType = "Cow"

// DairyCowType marks animals that contribute to the milk production chart.
const DairyCowType = "Dairy Cow"

// Animal is one livestock record of the herd.
type Animal struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	Type            string       `json:"type"`
	BirthDate       time.Time    `json:"birthDate"`
	Weight          float64      `json:"weight"`
	HealthStatus    HealthStatus `json:"healthStatus"`
	LastCheckup     time.Time    `json:"lastCheckup"`
	MilkProduction  *float64     `json:"milkProduction,omitempty"`
	FeedConsumption *float64     `json:"feedConsumption,omitempty"`
	Notes           *string      `json:"notes,omitempty"`
}

// Clone returns a deep copy so callers never share optional field pointers.
func (a Animal) Clone() Animal {
	out := a
	out.MilkProduction = cloneFloat(a.MilkProduction)
	out.FeedConsumption = cloneFloat(a.FeedConsumption)
	if a.Notes != nil {
		notes := *a.Notes
		out.Notes = &notes
	}
	return out
}

// Milk returns the milk production or zero when unknown.
func (a Animal) Milk() float64 {
	if a.MilkProduction == nil {
		return 0
	}
	return *a.MilkProduction
}

// Feed returns the feed consumption or zero when unknown.
func (a Animal) Feed() float64 {
	if a.FeedConsumption == nil {
		return 0
	}
	return *a.FeedConsumption
}

// AnimalPatch carries a partial animal. Nil fields are left untouched on update
// and defaulted on creation.
type AnimalPatch struct {
	Name            *string       `json:"name,omitempty"`
	Type            *string       `json:"type,omitempty"`
	BirthDate       *time.Time    `json:"birthDate,omitempty"`
	Weight          *float64      `json:"weight,omitempty"`
	HealthStatus    *HealthStatus `json:"healthStatus,omitempty"`
	LastCheckup     *time.Time    `json:"lastCheckup,omitempty"`
	MilkProduction  *float64      `json:"milkProduction,omitempty"`
	FeedConsumption *float64      `json:"feedConsumption,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p AnimalPatch) IsEmpty() bool {
	return p == AnimalPatch{}
}

// Apply merges the present fields of the patch into a copy of the animal.
func (p AnimalPatch) Apply(a Animal) Animal {
	out := a.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.BirthDate != nil {
		out.BirthDate = *p.BirthDate
	}
	if p.Weight != nil {
		out.Weight = *p.Weight
	}
	if p.HealthStatus != nil {
		out.HealthStatus = *p.HealthStatus
	}
	if p.LastCheckup != nil {
		out.LastCheckup = *p.LastCheckup
	}
	if p.MilkProduction != nil {
		out.MilkProduction = cloneFloat(p.MilkProduction)
	}
	if p.FeedConsumption != nil {
		out.FeedConsumption = cloneFloat(p.FeedConsumption)
	}
	if p.Notes != nil {
		notes := *p.Notes
		out.Notes = &notes
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// Float returns a pointer to v, handy for optional fields.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v, handy for optional fields.
func String(v string) *string { return &v }

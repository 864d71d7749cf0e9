package models

// Hazard is a threat type that can disrupt linked assets and services
type Hazard struct {
	ID                string `json:"id" validate:"required"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	HazardType        string `json:"hazard_type,omitempty"`
	DefaultLikelihood int    `json:"default_likelihood,omitempty" validate:"omitempty,min=1,max=5"`
}

// HazardLink ties a hazard to an asset, a service, or both.
type HazardLink struct {
	HazardID         string  `json:"hazard_id" validate:"required"`
	AssetID          string  `json:"asset_id,omitempty" validate:"required_without=ServiceID"`
	ServiceID        string  `json:"service_id,omitempty"`
	ImpactMultiplier float64 `json:"impact_multiplier,omitempty" validate:"min=0"`
}

// Scenario fixes a hazard and a duration for what-if simulation
type Scenario struct {
	ID            string `json:"id" validate:"required"`
	Name          string `json:"name"`
	HazardID      string `json:"hazard_id" validate:"required"`
	DurationHours int    `json:"duration_hours" validate:"min=0"`
	Notes         string `json:"notes,omitempty"`
}

package models

// Asset is an entry from the external asset registry.
type Asset struct {
	ID   string `json:"id" validate:"required"`
	Code string `json:"code" validate:"required"`
	Name string `json:"name,omitempty"`
}

// CriticalService is the unit a BIA profile attaches to
type CriticalService struct {
	ID   string `json:"id" validate:"required"`
	Code string `json:"code" validate:"required"`
	Name string `json:"name"`
}

// ServiceAssetMapping associates an asset with a service it supports.
type ServiceAssetMapping struct {
	ServiceID string `json:"service_id" validate:"required"`
	AssetID   string `json:"asset_id" validate:"required"`
	Process   string `json:"process,omitempty"`
	Role      string `json:"role,omitempty"`
}

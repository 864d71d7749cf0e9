package models

// DependencyType tags an asset dependency edge
type DependencyType string

const (
	DependencyHard    DependencyType = "hard"
	DependencySoft    DependencyType = "soft"
	DependencyLogical DependencyType = "logical"
)

// DefaultDependencyStrength is applied when an edge is created without a strength.
const DefaultDependencyStrength = 3

// AssetDependencyEdge is a directed dependency between two assets.
// Failure propagates from SourceAssetID to TargetAssetID.
type AssetDependencyEdge struct {
	SourceAssetID string         `json:"source_asset_id" validate:"required"`
	TargetAssetID string         `json:"target_asset_id" validate:"required,nefield=SourceAssetID"`
	Type          DependencyType `json:"dependency_type" validate:"required,oneof=hard soft logical"`
	Strength      int            `json:"strength" validate:"min=1,max=5"`
	Description   string         `json:"description,omitempty"`
}

// NewDependencyEdge creates an edge with the default strength
func NewDependencyEdge(sourceID, targetID string, depType DependencyType) AssetDependencyEdge {
	return AssetDependencyEdge{
		SourceAssetID: sourceID,
		TargetAssetID: targetID,
		Type:          depType,
		Strength:      DefaultDependencyStrength,
	}
}

// Key identifies an edge for uniqueness checks: (source, target, type).
func (e AssetDependencyEdge) Key() string {
	return e.SourceAssetID + "->" + e.TargetAssetID + "#" + string(e.Type)
}

package incident

import (
	"sort"

	"github.com/riskgraph/pkg/models"
)

// Catalog indexes services, their asset mappings and BIA profiles.
// It is read-only once built and may be shared across goroutines.
type Catalog struct {
	services      map[string]models.CriticalService
	profiles      map[string]models.BIAProfile
	assetServices map[string][]string
}

// NewCatalog builds a catalog. Mappings that name an unknown service keep the
// service id as its code.
func NewCatalog(services []models.CriticalService, mappings []models.ServiceAssetMapping, profiles []models.BIAProfile) *Catalog {
	c := &Catalog{
		services:      make(map[string]models.CriticalService, len(services)),
		profiles:      make(map[string]models.BIAProfile, len(profiles)),
		assetServices: make(map[string][]string),
	}
	for _, s := range services {
		c.services[s.ID] = s
	}
	for _, p := range profiles {
		c.profiles[p.ServiceID] = p
	}

	seen := make(map[[2]string]struct{}, len(mappings))
	for _, m := range mappings {
		key := [2]string{m.AssetID, m.ServiceID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		c.assetServices[m.AssetID] = append(c.assetServices[m.AssetID], m.ServiceID)
		if _, ok := c.services[m.ServiceID]; !ok {
			c.services[m.ServiceID] = models.CriticalService{ID: m.ServiceID, Code: m.ServiceID}
		}
	}
	return c
}

// Service returns the service with the given id.
func (c *Catalog) Service(id string) (models.CriticalService, bool) {
	s, ok := c.services[id]
	return s, ok
}

// Profile returns the BIA profile of a service, or nil.
func (c *Catalog) Profile(serviceID string) *models.BIAProfile {
	p, ok := c.profiles[serviceID]
	if !ok {
		return nil
	}
	return &p
}

// AssetsForServices returns every asset mapped to one of the given services.
func (c *Catalog) AssetsForServices(serviceIDs []string) []string {
	wanted := make(map[string]struct{}, len(serviceIDs))
	for _, id := range serviceIDs {
		wanted[id] = struct{}{}
	}
	var assets []string
	for asset, services := range c.assetServices {
		for _, s := range services {
			if _, ok := wanted[s]; ok {
				assets = append(assets, asset)
				break
			}
		}
	}
	sort.Strings(assets)
	return assets
}

// ServicesForAssets groups the failed assets by the services they are mapped to.
// Asset lists are sorted.
func (c *Catalog) ServicesForAssets(failed map[string]struct{}) map[string][]string {
	out := make(map[string][]string)
	for asset := range failed {
		for _, serviceID := range c.assetServices[asset] {
			out[serviceID] = append(out[serviceID], asset)
		}
	}
	for _, assets := range out {
		sort.Strings(assets)
	}
	return out
}

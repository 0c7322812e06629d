package temporal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Criticality tiers for services in the catalog.
const (
	CriticalityCritical = "critical"
	CriticalityHigh     = "high"
	CriticalityMedium   = "medium"
	CriticalityLow      = "low"
)

// Access-window policies assignable per criticality tier.
const (
	AccessPattern24x7                  = "24x7"
	AccessPatternBusinessHoursExtended = "business_hours_extended"
	AccessPatternBusinessHours         = "business_hours"
)

// freshnessHorizons maps service criticality to the maximum permitted age of
// an enriched context, in seconds.
var freshnessHorizons = map[string]int{
	CriticalityCritical: 60,
	CriticalityHigh:     300,
	CriticalityMedium:   900,
	CriticalityLow:      3600,
}

// HourRange is a daily window expressed in whole hours, start inclusive and
// end exclusive.
type HourRange struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// WeekendSupport controls weekend business-hours handling. CriticalOnly
// restricts weekend coverage to critical services; ReducedHours replaces the
// weekday window with a shorter one.
type WeekendSupport struct {
	CriticalOnly bool       `yaml:"critical_only"`
	ReducedHours *HourRange `yaml:"reduced_hours,omitempty"`
}

// BusinessHoursConfig is the weekday business-hours window plus weekend
// behavior, shared by all services in a catalog.
type BusinessHoursConfig struct {
	StartHour      int             `yaml:"start_hour"`
	EndHour        int             `yaml:"end_hour"`
	WeekendSupport *WeekendSupport `yaml:"weekend_support,omitempty"`
}

// ServiceEntry describes a single service in the catalog.
type ServiceEntry struct {
	Criticality            string `yaml:"criticality"`
	Timezone               string `yaml:"timezone"`
	EscalationDelayMinutes int    `yaml:"escalation_delay_minutes"`
}

// ServiceCatalog is the enricher's view of the services it derives context
// for: a shared business-hours window, per-criticality access-window
// policies, and per-service metadata.
type ServiceCatalog struct {
	BusinessHours BusinessHoursConfig     `yaml:"business_hours"`
	AccessWindows map[string]string       `yaml:"access_windows"`
	Services      map[string]ServiceEntry `yaml:"services"`
}

// DefaultServiceCatalog returns an empty catalog with standard business
// hours and the default access-window policy per tier.
func DefaultServiceCatalog() *ServiceCatalog {
	return &ServiceCatalog{
		BusinessHours: BusinessHoursConfig{
			StartHour: 9,
			EndHour:   17,
		},
		AccessWindows: map[string]string{
			CriticalityCritical: AccessPattern24x7,
			CriticalityHigh:     AccessPatternBusinessHoursExtended,
			CriticalityMedium:   AccessPatternBusinessHoursExtended,
			CriticalityLow:      AccessPatternBusinessHours,
		},
		Services: make(map[string]ServiceEntry),
	}
}

// LoadServiceCatalog reads a catalog from a YAML file. Fields absent from
// the file keep their defaults.
func LoadServiceCatalog(path string) (*ServiceCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service catalog: %w", err)
	}

	catalog := DefaultServiceCatalog()
	if err := yaml.Unmarshal(data, catalog); err != nil {
		return nil, fmt.Errorf("failed to parse service catalog %s: %w", path, err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service catalog %s: %w", path, err)
	}

	return catalog, nil
}

// Validate checks the catalog for configuration errors.
func (c *ServiceCatalog) Validate() error {
	if c.BusinessHours.StartHour < 0 || c.BusinessHours.StartHour > 23 {
		return fmt.Errorf("business_hours.start_hour must be in [0, 23], got %d", c.BusinessHours.StartHour)
	}
	if c.BusinessHours.EndHour < 1 || c.BusinessHours.EndHour > 24 {
		return fmt.Errorf("business_hours.end_hour must be in [1, 24], got %d", c.BusinessHours.EndHour)
	}
	if c.BusinessHours.EndHour <= c.BusinessHours.StartHour {
		return fmt.Errorf("business_hours.end_hour %d must be after start_hour %d", c.BusinessHours.EndHour, c.BusinessHours.StartHour)
	}

	for tier, pattern := range c.AccessWindows {
		switch pattern {
		case AccessPattern24x7, AccessPatternBusinessHoursExtended, AccessPatternBusinessHours:
		default:
			return fmt.Errorf("unknown access window pattern %q for tier %q", pattern, tier)
		}
	}

	for name, svc := range c.Services {
		switch svc.Criticality {
		case "", CriticalityCritical, CriticalityHigh, CriticalityMedium, CriticalityLow:
		default:
			return fmt.Errorf("service %q has unknown criticality %q", name, svc.Criticality)
		}
	}

	return nil
}

// Service looks up a service entry by name.
func (c *ServiceCatalog) Service(name string) (ServiceEntry, bool) {
	svc, ok := c.Services[name]
	return svc, ok
}

// FreshnessHorizonSeconds returns the freshness horizon for a criticality
// tier. Unknown tiers get the medium horizon.
func FreshnessHorizonSeconds(criticality string) int {
	if s, ok := freshnessHorizons[criticality]; ok {
		return s
	}
	return freshnessHorizons[CriticalityMedium]
}

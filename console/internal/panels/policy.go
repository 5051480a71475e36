package panels

import (
	"fmt"
	"sort"
	"strings"
)

// Policy decides what a panel does when its backend call fails
type Policy string

const (
	// PolicyFallback substitutes demo data and shows a notice
	PolicyFallback Policy = "fallback"
	// PolicySurface shows the failure
	PolicySurface Policy = "surface"
)

// Endpoint names used as policy keys
const (
	EndpointSteps     = "steps"
	EndpointEmergency = "emergency"
	EndpointAnalyze   = "analyze"
	EndpointPatients  = "patients"
	EndpointVitals    = "vitals"
	EndpointSummary   = "summary"
	EndpointQR        = "qr"
)

// endpoints with demo data available
var fallbackCapable = map[string]bool{
	EndpointSteps:     true,
	EndpointEmergency: true,
	EndpointAnalyze:   true,
}

// Policies maps endpoint name to failure policy
type Policies map[string]Policy

func DefaultPolicies() Policies {
	return Policies{
		EndpointSteps:     PolicyFallback,
		EndpointEmergency: PolicyFallback,
		EndpointAnalyze:   PolicyFallback,
		EndpointPatients:  PolicySurface,
		EndpointVitals:    PolicySurface,
		EndpointSummary:   PolicySurface,
		EndpointQR:        PolicySurface,
	}
}

// ParsePolicies applies overrides such as {"steps": "surface"} on top of the
// defaults. Only steps, emergency and analyze have demo data to fall back to.
func ParsePolicies(overrides map[string]string) (Policies, error) {
	policies := DefaultPolicies()

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		endpoint := strings.ToLower(strings.TrimSpace(raw))
		if _, ok := policies[endpoint]; !ok {
			return nil, fmt.Errorf("unknown endpoint %q in fallback policy", raw)
		}

		policy := Policy(strings.ToLower(strings.TrimSpace(overrides[raw])))
		switch policy {
		case PolicySurface:
		case PolicyFallback:
			if !fallbackCapable[endpoint] {
				return nil, fmt.Errorf("endpoint %q has no demo data to fall back to", endpoint)
			}
		default:
			return nil, fmt.Errorf("unknown policy %q for endpoint %q", overrides[raw], endpoint)
		}
		policies[endpoint] = policy
	}
	return policies, nil
}

// For returns the policy for endpoint, surface when unset
func (p Policies) For(endpoint string) Policy {
	if policy, ok := p[endpoint]; ok {
		return policy
	}
	return PolicySurface
}

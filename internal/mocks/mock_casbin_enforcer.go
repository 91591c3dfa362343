package mocks

import (
	"strings"

	"github.com/you/emrsvc/domain"
)

// MockCasbinEnforcer implements the CasbinEnforcer interface for testing
type MockCasbinEnforcer struct {
	AddPolicyFunc    func(params ...interface{}) (bool, error)
	RemovePolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc      func(rvals ...interface{}) (bool, error)
	GetPolicyFunc    func() ([][]string, error)
	SavePolicyFunc   func() error
	LoadPolicyFunc   func() error
	policies         [][]string
}

// Compile-time interface compliance verification
var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer with an empty policy set
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{}
}

// AddPolicy adds a new policy rule
func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}

	// Default behavior: add to internal policies list
	if len(params) >= 3 {
		policy := make([]string, len(params))
		for i, param := range params {
			if str, ok := param.(string); ok {
				policy[i] = str
			}
		}
		m.policies = append(m.policies, policy)
		return true, nil
	}
	return false, nil
}

// RemovePolicy removes a policy rule
func (m *MockCasbinEnforcer) RemovePolicy(params ...interface{}) (bool, error) {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(params...)
	}

	// Default behavior: remove from internal policies list
	if len(params) >= 3 {
		targetPolicy := make([]string, len(params))
		for i, param := range params {
			if str, ok := param.(string); ok {
				targetPolicy[i] = str
			}
		}

		for i, policy := range m.policies {
			if len(policy) == len(targetPolicy) {
				match := true
				for j, val := range policy {
					if val != targetPolicy[j] {
						match = false
						break
					}
				}
				if match {
					m.policies = append(m.policies[:i], m.policies[i+1:]...)
					return true, nil
				}
			}
		}
	}
	return false, nil
}

// Enforce checks if a request should be allowed. The default matches
// stored policies exactly or by a trailing "*" on the resource.
func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	if len(rvals) < 3 {
		return false, nil
	}
	role, _ := rvals[0].(string)
	resource, _ := rvals[1].(string)
	action, _ := rvals[2].(string)

	for _, policy := range m.policies {
		if len(policy) < 3 || policy[0] != role {
			continue
		}
		if !matchResource(policy[1], resource) {
			continue
		}
		if policy[2] == action || policy[2] == "*" {
			return true, nil
		}
	}
	return false, nil
}

func matchResource(pattern, resource string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(resource, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == resource
}

// GetPolicy returns all policies
func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	// Return copy of internal policies
	result := make([][]string, len(m.policies))
	for i, policy := range m.policies {
		result[i] = make([]string, len(policy))
		copy(result[i], policy)
	}
	return result, nil
}

// SavePolicy saves all policies
func (m *MockCasbinEnforcer) SavePolicy() error {
	if m.SavePolicyFunc != nil {
		return m.SavePolicyFunc()
	}
	// Default behavior: success
	return nil
}

// LoadPolicy loads all policies
func (m *MockCasbinEnforcer) LoadPolicy() error {
	if m.LoadPolicyFunc != nil {
		return m.LoadPolicyFunc()
	}
	// Default behavior: success
	return nil
}

// SetPolicies sets the internal policies (test helper)
func (m *MockCasbinEnforcer) SetPolicies(policies [][]string) {
	m.policies = make([][]string, len(policies))
	for i, policy := range policies {
		m.policies[i] = make([]string, len(policy))
		copy(m.policies[i], policy)
	}
}
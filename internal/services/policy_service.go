package services

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/you/emrsvc/domain"
)

// DefaultPolicies is the role/route matrix installed on first start.
// Resources use keyMatch2 patterns, actions are regexes.
var DefaultPolicies = [][]string{
	{domain.RoleAdmin, "/api/*", "(GET)|(POST)|(PUT)|(DELETE)"},
	{domain.RoleUser, "/api/users/profile", "(GET)|(PUT)"},
	{domain.RoleUser, "/api/users/avatar", "POST"},
	{domain.RoleUser, "/api/users", "GET"},
	{domain.RoleUser, "/api/users/:id", "GET"},
	{domain.RoleUser, "/api/files/*", "(GET)|(POST)|(DELETE)"},
}

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) RemovePolicy(params ...interface{}) (bool, error) {
	return w.enforcer.RemovePolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

func (w *CasbinEnforcerWrapper) SavePolicy() error {
	return w.enforcer.SavePolicy()
}

// PolicyServiceImpl implements domain.PolicyService using Casbin
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: NewCasbinEnforcerWrapper(enforcer),
	}
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	if err := validatePolicy(role, resource, action); err != nil {
		return err
	}
	if _, err := p.enforcer.AddPolicy(role, resource, action); err != nil {
		return fmt.Errorf("add policy: %w", err)
	}
	return p.save()
}

// RemovePolicy implements domain.PolicyService. Removing an absent rule is not an error.
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	if _, err := p.enforcer.RemovePolicy(role, resource, action); err != nil {
		return fmt.Errorf("remove policy: %w", err)
	}
	return p.save()
}

func (p *PolicyServiceImpl) save() error {
	if err := p.enforcer.SavePolicy(); err != nil {
		return fmt.Errorf("save policies: %w", err)
	}
	return nil
}

// Subjects are plain role names; resources are keyMatch2 paths.
func validatePolicy(role, resource, action string) error {
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return domain.ErrInvalidPolicy
	}
	if !strings.HasPrefix(resource, "/") || strings.TrimSpace(action) == "" {
		return domain.ErrInvalidPolicy
	}
	return nil
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}

// SeedDefaults implements domain.PolicyService. It only writes to an empty policy table.
func (p *PolicyServiceImpl) SeedDefaults() (bool, error) {
	existing, err := p.enforcer.GetPolicy()
	if err != nil {
		return false, fmt.Errorf("failed to read policies: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	for _, rule := range DefaultPolicies {
		if _, err := p.enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
			return false, fmt.Errorf("failed to add policy %v: %w", rule, err)
		}
	}
	if err := p.enforcer.SavePolicy(); err != nil {
		return false, fmt.Errorf("failed to save policies: %w", err)
	}
	return true, nil
}

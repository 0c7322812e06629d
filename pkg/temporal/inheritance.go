package temporal

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// InheritanceRule describes how a temporal role may be granted: which
// permanent roles are eligible to hold it, which roles it inherits
// permissions through, what it adds, and how long a grant should last.
type InheritanceRule struct {
	EligibleBaseRoles []string
	InheritsFrom      []string
	AddsPermissions   []string
	MaxDuration       time.Duration
}

// oncallHierarchy orders the on-call tiers from lowest to highest elevation.
var oncallHierarchy = []string{"oncall_low", "oncall_medium", "oncall_high", "oncall_critical"}

// defaultInheritanceRules is the fixed per-role eligibility table.
var defaultInheritanceRules = map[string]InheritanceRule{
	"oncall_low": {
		EligibleBaseRoles: []string{"nurse", "resident", "technician", "physician_assistant"},
		InheritsFrom:      []string{},
		AddsPermissions:   []string{"emergency_read_patient_basic", "emergency_vitals_access"},
		MaxDuration:       12 * time.Hour,
	},
	"oncall_medium": {
		EligibleBaseRoles: []string{"nurse", "resident", "attending_physician", "physician_assistant"},
		InheritsFrom:      []string{"oncall_low"},
		AddsPermissions:   []string{"emergency_read_patient_full", "emergency_modify_orders", "emergency_medication_access"},
		MaxDuration:       12 * time.Hour,
	},
	"oncall_high": {
		EligibleBaseRoles: []string{"attending_physician", "department_head", "senior_resident"},
		InheritsFrom:      []string{"oncall_low", "oncall_medium"},
		AddsPermissions:   []string{"emergency_cross_department_access", "emergency_override_restrictions", "emergency_lab_orders"},
		MaxDuration:       12 * time.Hour,
	},
	"oncall_critical": {
		EligibleBaseRoles: []string{"attending_physician", "department_head", "chief_medical_officer"},
		InheritsFrom:      []string{"oncall_low", "oncall_medium", "oncall_high"},
		AddsPermissions:   []string{"emergency_full_hospital_access", "emergency_modify_any_record", "emergency_administrative_override"},
		MaxDuration:       8 * time.Hour,
	},
	"acting_manager": {
		EligibleBaseRoles: []string{"senior_analyst", "team_lead", "supervisor", "senior_staff"},
		InheritsFrom:      []string{"target_manager_role"},
		AddsPermissions:   []string{"manage_team", "approve_requests", "access_management_reports", "staff_scheduling"},
		MaxDuration:       168 * time.Hour,
	},
	"acting_supervisor": {
		EligibleBaseRoles: []string{"senior_analyst", "team_lead", "specialist"},
		InheritsFrom:      []string{"target_supervisor_role"},
		AddsPermissions:   []string{"supervise_team", "review_work", "assign_tasks"},
		MaxDuration:       168 * time.Hour,
	},
	"acting_department_head": {
		EligibleBaseRoles: []string{"manager", "supervisor", "senior_manager"},
		InheritsFrom:      []string{"target_department_head_role"},
		AddsPermissions:   []string{"department_oversight", "budget_access", "policy_decisions"},
		MaxDuration:       720 * time.Hour,
	},
	"incident_responder": {
		EligibleBaseRoles: []string{"security_analyst", "system_administrator", "senior_engineer"},
		InheritsFrom:      []string{},
		AddsPermissions:   []string{"incident_investigation", "system_access_override", "log_analysis"},
		MaxDuration:       24 * time.Hour,
	},
	"security_incident_lead": {
		EligibleBaseRoles: []string{"security_manager", "senior_security_analyst", "incident_commander"},
		InheritsFrom:      []string{"incident_responder"},
		AddsPermissions:   []string{"security_override", "evidence_collection", "system_isolation"},
		MaxDuration:       72 * time.Hour,
	},
}

// ValidationResult reports the outcome of role inheritance validation.
// Errors block the elevation; warnings are advisory only.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// RoleInheritanceValidator checks that a time-bounded role elevation is
// well-formed: eligible base role, unexpired grant, and a coherent
// inheritance chain.
type RoleInheritanceValidator struct {
	rules  map[string]InheritanceRule
	logger *slog.Logger
}

// NewRoleInheritanceValidator creates a validator over the default
// eligibility table.
func NewRoleInheritanceValidator(logger *slog.Logger) *RoleInheritanceValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleInheritanceValidator{
		rules:  defaultInheritanceRules,
		logger: logger.With("component", "inheritance-validator"),
	}
}

// Rule returns the inheritance rule for a temporal role.
func (v *RoleInheritanceValidator) Rule(temporalRole string) (InheritanceRule, bool) {
	rule, ok := v.rules[temporalRole]
	return rule, ok
}

// ExpectedChain returns the inheritance chain a context holding the given
// role should carry: base role first, intermediate roles in order, the
// temporal role last.
func (v *RoleInheritanceValidator) ExpectedChain(baseRole, temporalRole string) []string {
	rule, ok := v.rules[temporalRole]
	if !ok {
		return nil
	}

	chain := []string{baseRole}
	for _, r := range rule.InheritsFrom {
		if !slices.Contains(chain, r) {
			chain = append(chain, r)
		}
	}
	return append(chain, temporalRole)
}

// InheritedPermissions returns the permission set a temporal role grants,
// including permissions picked up from the roles it inherits through.
func (v *RoleInheritanceValidator) InheritedPermissions(temporalRole string) map[string]struct{} {
	perms := make(map[string]struct{})
	rule, ok := v.rules[temporalRole]
	if !ok {
		return perms
	}

	for _, inherited := range rule.InheritsFrom {
		if ir, ok := v.rules[inherited]; ok {
			for _, p := range ir.AddsPermissions {
				perms[p] = struct{}{}
			}
		}
	}
	for _, p := range rule.AddsPermissions {
		perms[p] = struct{}{}
	}
	return perms
}

// Validate checks a temporal role elevation against the eligibility table.
// A context without a temporal role is trivially valid. The declared risk
// level is compared against a computed risk score; a mismatch is surfaced as
// a warning and never blocks.
func (v *RoleInheritanceValidator) Validate(tc *TemporalContext, declared RiskLevel, now time.Time) ValidationResult {
	if !tc.HasTemporalRole() {
		return ValidationResult{Valid: true}
	}

	var errors, warnings []string
	role := tc.TemporalRole

	rule, known := v.rules[role]
	if !known {
		errors = append(errors, fmt.Sprintf("unknown temporal role %q", role))
		return ValidationResult{Valid: false, Errors: errors}
	}

	if tc.BaseRole == "" {
		errors = append(errors, fmt.Sprintf("temporal role %q requires a base role", role))
	} else if !slices.Contains(rule.EligibleBaseRoles, tc.BaseRole) {
		errors = append(errors, fmt.Sprintf(
			"base role %q not eligible for temporal role %q (eligible: %s)",
			tc.BaseRole, role, strings.Join(rule.EligibleBaseRoles, ", "),
		))
	}

	switch {
	case tc.TemporalRoleValidUntil == nil:
		errors = append(errors, fmt.Sprintf("temporal role %q has no expiration", role))
	case !tc.TemporalRoleValidUntil.After(now):
		errors = append(errors, fmt.Sprintf("temporal role %q expired at %s", role, tc.TemporalRoleValidUntil.Format(time.RFC3339)))
	default:
		if !tc.Timestamp.IsZero() && tc.TemporalRoleValidUntil.Sub(tc.Timestamp) > rule.MaxDuration {
			warnings = append(warnings, fmt.Sprintf(
				"temporal role %q granted for longer than the recommended maximum of %s", role, rule.MaxDuration,
			))
		}
	}

	chain := tc.PermissionInheritanceChain
	switch {
	case len(chain) == 0:
		errors = append(errors, fmt.Sprintf("temporal role %q requires a permission inheritance chain", role))
	case chain[len(chain)-1] != role:
		errors = append(errors, fmt.Sprintf(
			"permission inheritance chain must end at %q, ends at %q", role, chain[len(chain)-1],
		))
	}

	if isOncallRole(role) && tc.EmergencyActive() {
		errors = append(errors, v.validateEmergencyElevation(tc)...)
	}
	if isActingRole(role) {
		if tc.AuthorizationSource == "" {
			errors = append(errors, fmt.Sprintf("acting role %q requires an authorization source", role))
		}
	}

	if score := v.riskScore(tc, now); riskForScore(score) != declared {
		warnings = append(warnings, fmt.Sprintf(
			"declared risk level %s inconsistent with computed risk %s (score %d)",
			declared, riskForScore(score), score,
		))
	}

	result := ValidationResult{Valid: len(errors) == 0, Errors: errors, Warnings: warnings}
	if !result.Valid {
		v.logger.Debug("role inheritance validation failed",
			"temporal_role", role,
			"errors", len(errors),
		)
	}
	return result
}

// validateEmergencyElevation enforces the extra requirements on on-call
// roles used in an emergency: an authorization ID and a chain covering the
// lower on-call tiers.
func (v *RoleInheritanceValidator) validateEmergencyElevation(tc *TemporalContext) []string {
	var errors []string

	if tc.EmergencyAuthorizationID == "" {
		errors = append(errors, fmt.Sprintf("emergency role %q requires an emergency authorization ID", tc.TemporalRole))
	}

	level := slices.Index(oncallHierarchy, tc.TemporalRole)
	for i := 0; i < level; i++ {
		if !slices.Contains(tc.PermissionInheritanceChain, oncallHierarchy[i]) {
			errors = append(errors, fmt.Sprintf(
				"oncall role %q must inherit from %q", tc.TemporalRole, oncallHierarchy[i],
			))
		}
	}

	return errors
}

// riskScore counts risk indicators on the context: situational factors plus
// a per-role elevation weight.
func (v *RoleInheritanceValidator) riskScore(tc *TemporalContext, now time.Time) int {
	score := 0

	if tc.EmergencyOverride {
		score += 2
	}
	if !tc.BusinessHours {
		score++
	}
	if tc.Situation == SituationEmergency {
		score++
	}

	switch tc.TemporalRole {
	case "oncall_low", "incident_responder":
		score++
	case "oncall_medium", "acting_manager", "acting_supervisor", "security_incident_lead":
		score += 2
	case "oncall_high", "acting_department_head":
		score += 3
	case "oncall_critical":
		score += 4
	}

	if tc.TemporalRoleValidUntil != nil && !tc.TemporalRoleValidUntil.After(now) {
		score += 4
	}

	return score
}

// riskForScore maps a risk score onto the declared risk scale.
func riskForScore(score int) RiskLevel {
	switch {
	case score <= 1:
		return RiskLow
	case score <= 3:
		return RiskMedium
	case score <= 5:
		return RiskHigh
	default:
		return RiskCritical
	}
}

func isOncallRole(role string) bool {
	return strings.HasPrefix(role, "oncall_")
}

func isActingRole(role string) bool {
	return strings.HasPrefix(role, "acting_")
}

package access

import (
	"fmt"
	"sort"

	"github.com/styrcan/pulse/internal/errors"
)

// Feature keys gated by the permission table. Every key the client
// references must appear in permissionTable; ValidateTable enforces this
// at startup so drift between callers and the table fails fast instead of
// silently denying.
const (
	FeatureDirectoryView   = "directory:view"
	FeatureDirectoryManage = "directory:manage"
	FeatureScheduleView    = "schedule:view"
	FeatureScheduleManage  = "schedule:manage"
	FeaturePTORequest      = "pto:request"
	FeaturePTOApprove      = "pto:approve"
	FeaturePayrollView     = "payroll:view"
	FeaturePayrollRun      = "payroll:run"
	FeatureFinanceView     = "finance:view"
	FeatureFinanceManage   = "finance:manage"
	FeatureMessagingSend   = "messaging:send"
	FeatureSettingsManage  = "settings:manage"
	FeatureBillingManage   = "billing:manage"
)

// permissionTable maps each feature key to the roles permitted to use it.
// Lookup is fail-closed: a key missing from this table denies everyone.
var permissionTable = map[string][]Role{
	FeatureDirectoryView:   {RoleEmployee, RoleManager, RoleAdmin, RoleOwner},
	FeatureDirectoryManage: {RoleAdmin, RoleOwner},
	FeatureScheduleView:    {RoleEmployee, RoleManager, RoleAdmin, RoleOwner},
	FeatureScheduleManage:  {RoleManager, RoleAdmin, RoleOwner},
	FeaturePTORequest:      {RoleEmployee, RoleManager, RoleAdmin, RoleOwner},
	FeaturePTOApprove:      {RoleManager, RoleAdmin, RoleOwner},
	FeaturePayrollView:     {RoleAdmin, RoleOwner},
	FeaturePayrollRun:      {RoleAdmin, RoleOwner},
	FeatureFinanceView:     {RoleAdmin, RoleOwner},
	FeatureFinanceManage:   {RoleAdmin, RoleOwner},
	FeatureMessagingSend:   {RoleEmployee, RoleManager, RoleAdmin, RoleOwner},
	FeatureSettingsManage:  {RoleAdmin, RoleOwner},
	FeatureBillingManage:   {RoleOwner},
}

// knownFeatures lists every feature key the client references. Kept next
// to the table so adding a constant without a table entry trips
// ValidateTable.
var knownFeatures = []string{
	FeatureDirectoryView,
	FeatureDirectoryManage,
	FeatureScheduleView,
	FeatureScheduleManage,
	FeaturePTORequest,
	FeaturePTOApprove,
	FeaturePayrollView,
	FeaturePayrollRun,
	FeatureFinanceView,
	FeatureFinanceManage,
	FeatureMessagingSend,
	FeatureSettingsManage,
	FeatureBillingManage,
}

// Features returns all registered feature keys in sorted order.
func Features() []string {
	keys := make([]string, len(knownFeatures))
	copy(keys, knownFeatures)
	sort.Strings(keys)
	return keys
}

// ValidateTable asserts the permission table invariants: every referenced
// feature key has an entry, every entry names only known roles, and the
// rank order is total and strictly increasing. Called once at startup.
func ValidateTable() error {
	for _, feature := range knownFeatures {
		roles, ok := permissionTable[feature]
		if !ok {
			return errors.New(errors.ErrCodeAccessTableInvalid,
				fmt.Sprintf("feature %q referenced by the client has no permission table entry", feature))
		}
		if len(roles) == 0 {
			return errors.New(errors.ErrCodeAccessTableInvalid,
				fmt.Sprintf("feature %q permits no roles", feature))
		}
		for _, role := range roles {
			if !role.Known() {
				return errors.New(errors.ErrCodeAccessTableInvalid,
					fmt.Sprintf("feature %q permits unknown role %q", feature, role))
			}
		}
	}

	for feature := range permissionTable {
		found := false
		for _, known := range knownFeatures {
			if known == feature {
				found = true
				break
			}
		}
		if !found {
			return errors.New(errors.ErrCodeAccessTableInvalid,
				fmt.Sprintf("permission table entry %q is not a registered feature key", feature))
		}
	}

	prev := -1
	for _, role := range AllRoles() {
		if role.Rank() <= prev {
			return errors.New(errors.ErrCodeAccessTableInvalid,
				fmt.Sprintf("role rank order is not strictly increasing at %q", role))
		}
		prev = role.Rank()
	}

	return nil
}

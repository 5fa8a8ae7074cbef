package types

// Reserved sheet names. Names are case-sensitive.
const (
	SheetFormResponses = "Form Responses"
	SheetMaster        = "Shadower Admins"
	SheetEventLog      = "Event Log"
)

// TableRole is the part a sheet plays in the mirror.
type TableRole int

// Table roles. Any sheet that is not one of the three reserved sheets is a
// category table named after a category value.
const (
	RoleCategory TableRole = iota
	RoleMaster
	RoleFormIntake
	RoleAuditLog
)

// String returns the role name used in log fields.
func (r TableRole) String() string {
	switch r {
	case RoleMaster:
		return "master"
	case RoleFormIntake:
		return "form_intake"
	case RoleAuditLog:
		return "audit_log"
	default:
		return "category"
	}
}

// MarshalText encodes the role by name.
func (r TableRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ResolvedTable is a sheet name resolved to its role. Category holds the
// category value for RoleCategory and is empty otherwise.
type ResolvedTable struct {
	Name     string
	Role     TableRole
	Category string
}

// ResolveRole resolves a sheet name to its role.
func ResolveRole(name string) ResolvedTable {
	switch name {
	case SheetMaster:
		return ResolvedTable{Name: name, Role: RoleMaster}
	case SheetFormResponses:
		return ResolvedTable{Name: name, Role: RoleFormIntake}
	case SheetEventLog:
		return ResolvedTable{Name: name, Role: RoleAuditLog}
	default:
		return ResolvedTable{Name: name, Role: RoleCategory, Category: name}
	}
}

// IsReserved reports whether name belongs to one of the reserved sheets and
// therefore cannot be used as a category table.
func IsReserved(name string) bool {
	return ResolveRole(name).Role != RoleCategory
}

package authorize

type Action string
type Resource string
type Role string
type PolicyEffect string

// ----------------------------
// Roles
// ----------------------------

const (
	RoleAdmin        Role = "admin"
	RoleProfessional Role = "professional"
	RoleReceptionist Role = "receptionist"
	RolePatient      Role = "patient"
)

var KnownRoles = map[Role]struct{}{
	RoleAdmin: {}, RoleProfessional: {}, RoleReceptionist: {}, RolePatient: {},
}

// IsStaff reports whether r belongs to clinic staff.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleProfessional, RoleReceptionist:
		return true
	}
	return false
}

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
	ActionCancel Action = "cancel"

	// ActionManage grants every other action on the resource.
	ActionManage Action = "manage"

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionCancel: {}, ActionManage: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceSchedule           Resource = "schedule"
	ResourceBlock              Resource = "block"
	ResourceAppointment        Resource = "appointment"
	ResourceCancellationReason Resource = "cancellation_reason"
	ResourceReport             Resource = "report"
	ResourceProfile            Resource = "profile"
	ResourceRBAC               Resource = "rbac"
)

var KnownResources = map[Resource]struct{}{
	ResourceSchedule: {}, ResourceBlock: {}, ResourceAppointment: {},
	ResourceCancellationReason: {}, ResourceReport: {}, ResourceProfile: {}, ResourceRBAC: {},
}

// ----------------------------
// Policies
// ----------------------------

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// PermissionPolicy is one "p" line: sub, obj, act, eft.
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}

// RoleDisplayNamesES holds the names shown to clinic staff.
var RoleDisplayNamesES = map[Role]string{
	RoleAdmin:        "Administrador",
	RoleProfessional: "Profesional",
	RoleReceptionist: "Recepcionista",
	RolePatient:      "Paciente",
}

package constants

const (
	RoleCaretaker = "CARETAKER"
	RoleTenant    = "TENANT"
)

const (
	UnitStatusAvailable = "AVAILABLE"
	UnitStatusOccupied  = "OCCUPIED"
)

const (
	ResourceTypeUnit    = "unit"
	ResourceTypeTenant  = "tenant"
	ResourceTypeLease   = "lease"
	ResourceTypeUser    = "user"
	ResourceTypeSession = "session"
)

const (
	AuditActionLogin     = "login"
	AuditActionLogout    = "logout"
	AuditActionCreate    = "create"
	AuditActionUpdate    = "update"
	AuditActionDelete    = "delete"
	AuditActionOnboard   = "onboard"
	AuditActionTerminate = "terminate"
	AuditActionOffboard  = "offboard"
)

const (
	AuditResultSuccess = "success"
	AuditResultFailed  = "failed"
)

const (
	EventTenantOnboarded  = "tenant.onboarded"
	EventTenantOffboarded = "tenant.offboarded"
	EventTenantUpdated    = "tenant.updated"
	EventLeaseTerminated  = "lease.terminated"
	EventUnitCreated      = "unit.created"
	EventUnitUpdated      = "unit.updated"
	EventUnitDeleted      = "unit.deleted"
)

// date layout accepted for lease start dates
const DateLayout = "2006-01-02"

const (
	AuthHeaderRequired          = "Authorization header is required"
	AuthHeaderInvalidFormat     = "Authorization header format must be Bearer {token}"
	AuthSessionMissing          = "No session on request"
	AuthInsufficientPermissions = "Insufficient permissions"
)

const (
	ContextKeySession   = "session"
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

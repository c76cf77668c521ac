package enum

// UserRole is the staff role of a user
type UserRole string

const (
	UserRoleManager  UserRole = "manager"
	UserRoleEmployee UserRole = "employee"
)

// Permission names checked by route middleware
const (
	PermManageClients  = "manage-clients"
	PermManageOrders   = "manage-orders"
	PermRecordPayments = "record-payments"
	PermPrintDocuments = "print-documents"
	PermManageCatalog  = "manage-catalog"
	PermManageUsers    = "manage-users"
	PermViewReports    = "view-reports"
	PermReconcile      = "reconcile-ledger"
)

var employeePermissions = []string{
	PermManageClients,
	PermManageOrders,
	PermRecordPayments,
	PermPrintDocuments,
}

var managerPermissions = append([]string{
	PermManageCatalog,
	PermManageUsers,
	PermViewReports,
	PermReconcile,
}, employeePermissions...)

func (r UserRole) IsValid() bool {
	return r == UserRoleManager || r == UserRoleEmployee
}

// Permissions returns the permission names granted to the role
func (r UserRole) Permissions() []string {
	switch r {
	case UserRoleManager:
		return append([]string(nil), managerPermissions...)
	case UserRoleEmployee:
		return append([]string(nil), employeePermissions...)
	}
	return nil
}

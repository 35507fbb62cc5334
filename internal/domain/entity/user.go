package entity

import "time"

// Roles válidos para User.
const (
	RoleWarehouseStaff   = "warehouse_staff"
	RoleInventoryManager = "inventory_manager"
)

// ValidRole indica si role es un rol conocido.
func ValidRole(role string) bool {
	return role == RoleWarehouseStaff || role == RoleInventoryManager
}

// User representa un usuario del sistema.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordReset OTP de restablecimiento de contraseña (guardado como hash).
type PasswordReset struct {
	ID        string
	Email     string
	OTPHash   string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

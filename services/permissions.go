package services

import "alumnihub/models"

// RoleHierarchy orders roles; higher numbers have more permissions
var RoleHierarchy = map[models.UserRole]int{
	models.RoleGuest: 0,
	models.RoleUser:  1,
	models.RoleAdmin: 2,
}

// IsRoleAtLeast checks if a role is at least at the required level
func IsRoleAtLeast(userRole, requiredRole models.UserRole) bool {
	userLevel, userExists := RoleHierarchy[userRole]
	requiredLevel, requiredExists := RoleHierarchy[requiredRole]

	// Unknown roles only match themselves
	if !userExists || !requiredExists {
		return userRole == requiredRole
	}

	return userLevel >= requiredLevel
}

package services

import (
	"strings"

	"github.com/alimgiray/contribboard/internal/models"
)

// RoleService resolves a contributor's role from the static membership lists.
// Lookups are case-insensitive and maintainer takes precedence over alumni.
type RoleService struct {
	members map[string]bool
	alumni  map[string]bool
}

func NewRoleService(members, alumni []string) *RoleService {
	service := &RoleService{
		members: make(map[string]bool, len(members)),
		alumni:  make(map[string]bool, len(alumni)),
	}
	for _, member := range members {
		service.members[strings.ToLower(member)] = true
	}
	for _, member := range alumni {
		service.alumni[strings.ToLower(member)] = true
	}
	return service
}

// Resolve returns the role for a username. It is called once when a
// contributor is first seen in a run; contributors restored from a prior
// snapshot keep their stored role.
func (s *RoleService) Resolve(username string) models.Role {
	lower := strings.ToLower(username)
	if s.members[lower] {
		return models.RoleMaintainer
	}
	if s.alumni[lower] {
		return models.RoleAlumni
	}
	return models.RoleContributor
}

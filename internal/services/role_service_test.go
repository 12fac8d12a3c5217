package services

import (
	"testing"

	"github.com/alimgiray/contribboard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestResolveRole(t *testing.T) {
	service := NewRoleService([]string{"Alice", "bob"}, []string{"carol", "bob"})

	testCases := []struct {
		name     string
		username string
		expected models.Role
	}{
		{name: "Maintainer", username: "alice", expected: models.RoleMaintainer},
		{name: "Case-insensitive lookup", username: "ALICE", expected: models.RoleMaintainer},
		{name: "Alumni", username: "carol", expected: models.RoleAlumni},
		{name: "Maintainer takes precedence over alumni", username: "bob", expected: models.RoleMaintainer},
		{name: "Everyone else is a contributor", username: "dave", expected: models.RoleContributor},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, service.Resolve(tc.username))
		})
	}
}

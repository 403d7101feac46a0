package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	e := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
}

func TestBaseEntityTouch(t *testing.T) {
	e := NewBaseEntity()
	e.UpdatedAt = e.UpdatedAt.Add(-time.Minute)
	before := e.UpdatedAt
	created := e.CreatedAt

	e.Touch()

	assert.True(t, e.UpdatedAt.After(before))
	assert.Equal(t, created, e.CreatedAt, "creation timestamp is never rewritten")
}

func TestNewOrgAggregateRoot(t *testing.T) {
	orgID := uuid.New()

	root := NewOrgAggregateRoot(orgID)

	assert.Equal(t, orgID, root.OrganizationID)
	assert.Equal(t, 1, root.Version)
	assert.Nil(t, root.CreatedBy)
	assert.Empty(t, root.GetDomainEvents())
}

package customer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"finbase/pkg/platform/sentinel"
)

type CustomerStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *CustomerStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestCustomerStoreSuite(t *testing.T) {
	suite.Run(t, new(CustomerStoreSuite))
}

func (s *CustomerStoreSuite) newCore(taxID string) *Core {
	core, err := NewCore(taxID)
	s.Require().NoError(err)
	return core
}

// TestCreationAndLookups verifies create plus both lookup paths.
func (s *CustomerStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds by id and tax id", func() {
		core := s.newCore("12345678901")
		s.Require().NoError(s.store.Create(s.ctx, core))
		s.False(core.ID.IsZero())

		byID, err := s.store.FindByID(s.ctx, core.ID)
		s.Require().NoError(err)
		s.Equal("12345678901", byID.TaxID)

		byTax, err := s.store.FindByTaxID(s.ctx, "12345678901")
		s.Require().NoError(err)
		s.Equal(core.ID, byTax.ID)
	})

	s.Run("returns ErrNotFound for unknown tax id", func() {
		_, err := s.store.FindByTaxID(s.ctx, "00000000000")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestTaxIDUniqueness verifies the global tax_id constraint.
func (s *CustomerStoreSuite) TestTaxIDUniqueness() {
	s.Run("rejects duplicate tax id", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newCore("98765432100")))

		err := s.store.Create(s.ctx, s.newCore("98765432100"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("frees the tax id after deletion", func() {
		core := s.newCore("11122233344")
		s.Require().NoError(s.store.Create(s.ctx, core))
		s.Require().NoError(s.store.Delete(s.ctx, core.ID))

		s.Require().NoError(s.store.Create(s.ctx, s.newCore("11122233344")))
	})
}

// TestUpdate verifies demographic fields can be filled in later.
func (s *CustomerStoreSuite) TestUpdate() {
	core := s.newCore("55544433322")
	s.Require().NoError(s.store.Create(s.ctx, core))

	status := MaritalMarried
	core.MaritalStatus = &status
	s.Require().NoError(core.SetDependents(2))
	core.PEPFlag = true
	s.Require().NoError(s.store.Update(s.ctx, core))

	found, err := s.store.FindByID(s.ctx, core.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.MaritalStatus)
	s.Equal(MaritalMarried, *found.MaritalStatus)
	s.Equal(2, *found.DependentsCount)
	s.True(found.PEPFlag)
}

// TestContacts verifies contact append, FK enforcement and cascade.
func (s *CustomerStoreSuite) TestContacts() {
	now := time.Now()

	s.Run("rejects contact for unknown customer", func() {
		contact, err := NewContact(999, "email", "a@b.com", now)
		s.Require().NoError(err)
		s.Require().ErrorIs(s.store.AddContact(s.ctx, contact), sentinel.ErrNotFound)
	})

	s.Run("cascades contacts on customer delete", func() {
		core := s.newCore("77788899900")
		s.Require().NoError(s.store.Create(s.ctx, core))

		contact, err := NewContact(core.ID, "phone", "+5511999999999", now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.AddContact(s.ctx, contact))

		s.Require().NoError(s.store.Delete(s.ctx, core.ID))

		contacts, err := s.store.ListContacts(s.ctx, core.ID)
		s.Require().NoError(err)
		s.Empty(contacts)
	})
}

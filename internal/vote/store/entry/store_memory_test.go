package entry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voteauth/internal/vote/models"
	id "voteauth/pkg/domain"
	"voteauth/pkg/platform/sentinel"
)

func TestInMemoryStoreLookups(t *testing.T) {
	s := NewInMemory(
		[]models.DepartmentEntry{{DepartmentCode: "1010", Kind: "NU"}},
		[]models.OverrideEntry{{StudentID: "A12345678", Kind: "T0"}},
	)
	ctx := context.Background()

	t.Run("department hit", func(t *testing.T) {
		kind, err := s.KindByDepartment(ctx, "1010")
		require.NoError(t, err)
		assert.Equal(t, id.KindCode("NU"), kind)
	})

	t.Run("department miss", func(t *testing.T) {
		_, err := s.KindByDepartment(ctx, "9999")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("override hit", func(t *testing.T) {
		kind, err := s.KindByStudent(ctx, "A12345678")
		require.NoError(t, err)
		assert.Equal(t, id.KindCode("T0"), kind)
	})

	t.Run("override miss", func(t *testing.T) {
		_, err := s.KindByStudent(ctx, "B00000000")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

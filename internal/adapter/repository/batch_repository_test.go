package repository

import (
	"testing"

	"github.com/plastinin/measurer/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildBatchFilter(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		where, args := buildBatchFilter(domain.BatchFilter{})

		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("status", func(t *testing.T) {
		status := domain.BatchStatusFailed
		where, args := buildBatchFilter(domain.BatchFilter{Status: &status})

		assert.Equal(t, " WHERE status = $1", where)
		assert.Equal(t, []any{domain.BatchStatusFailed}, args)
	})
}

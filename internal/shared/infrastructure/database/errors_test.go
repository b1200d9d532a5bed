package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNoRows(t *testing.T) {
	assert.False(t, IsNoRows(nil))
	assert.True(t, IsNoRows(sql.ErrNoRows))
	assert.True(t, IsNoRows(ErrNoRows))
	assert.True(t, IsNoRows(fmt.Errorf("load: %w", sql.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("disk full")))
}

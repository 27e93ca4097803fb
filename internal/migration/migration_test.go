package migration

import (
	"context"
	"testing"
	"time"

	"heartdash/internal/errors"

	"github.com/stretchr/testify/assert"
)

var _ Migrator = (*MigrationRunner)(nil)

func TestRunnerVersion(t *testing.T) {
	assert.Equal(t, "1.0.0", NewRunner().Version())
}

func TestConnectFailureIsDatabaseError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Connect(ctx, "postgres://heartdash@127.0.0.1:1/heartdash?sslmode=disable&connect_timeout=1")
	assert.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}

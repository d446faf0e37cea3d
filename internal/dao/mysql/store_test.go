package mysql

import (
	"os"
	"testing"

	"usermanagement_server/internal/config"
	"usermanagement_server/internal/dao"
	"usermanagement_server/internal/dao/daotest"
	"usermanagement_server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ dao.Store = (*Store)(nil)

// Set UM_TEST_MYSQL_DSN to run against a real server, e.g.
// root:secret@tcp(127.0.0.1:3306)/um_test?charset=utf8mb4&parseTime=True&loc=UTC
func TestStoreContract(t *testing.T) {
	dsn := os.Getenv("UM_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("UM_TEST_MYSQL_DSN not set")
	}
	daotest.RunStoreSuite(t, func(t *testing.T) dao.Store {
		store, err := Open(dsn)
		require.NoError(t, err)
		db := store.repos.DB()
		require.NoError(t, db.Exec("DELETE FROM "+model.FriendRequest{}.TableName()).Error)
		require.NoError(t, db.Exec("DELETE FROM "+model.UserInfo{}.TableName()).Error)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.MysqlConfig{Host: "db", Port: 3307, User: "um", Password: "pw", DatabaseName: "users"})
	assert.Equal(t, "um:pw@tcp(db:3307)/users?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
}

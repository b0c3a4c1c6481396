package redisx

import (
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageGetSetDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewStorage(db, "limiter:")

	mock.ExpectSet("limiter:10.0.0.1", []byte("3"), time.Minute).SetVal("OK")
	mock.ExpectGet("limiter:10.0.0.1").SetVal("3")
	mock.ExpectDel("limiter:10.0.0.1").SetVal(1)
	mock.ExpectGet("limiter:10.0.0.1").RedisNil()

	require.NoError(t, s.Set("10.0.0.1", []byte("3"), time.Minute))

	v, err := s.Get("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), v)

	require.NoError(t, s.Delete("10.0.0.1"))

	v, err = s.Get("10.0.0.1")
	require.NoError(t, err, "missing keys are not an error")
	assert.Nil(t, v)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageIgnoresEmptyInput(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewStorage(db, "limiter:")

	v, err := s.Get("")
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.NoError(t, s.Set("k", nil, time.Minute))
	assert.NoError(t, s.Delete(""))

	assert.NoError(t, mock.ExpectationsWereMet())
}

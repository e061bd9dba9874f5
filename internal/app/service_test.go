package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/joacominatel/pgbrowse/internal/config"
	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/database/databasetest"
)

func newTestService(cfg *config.Config) (*Service, *[]string) {
	var opened []string
	svc := NewService(cfg, func(dsn string) database.Browser {
		opened = append(opened, dsn)
		return &databasetest.Fake{}
	}, nil)
	return svc, &opened
}

func TestService_OpenDefault(t *testing.T) {
	keyring.MockInit()

	svc, opened := newTestService(&config.Config{Targets: []config.Connection{
		{Name: "primary", URL: "postgresql://a@one/db"},
		{Name: "external", URL: "postgresql://b@two/db"},
	}})

	assert.Equal(t, "primary", svc.DefaultTarget())

	b, err := svc.Open("")
	require.NoError(t, err)
	require.NotNil(t, b)

	_, err = svc.Open("external")
	require.NoError(t, err)

	assert.Equal(t, []string{"postgresql://a@one/db", "postgresql://b@two/db"}, *opened)
}

func TestService_OpenReturnsFreshInstances(t *testing.T) {
	svc, _ := newTestService(&config.Config{Targets: []config.Connection{{Name: "x", URL: "postgresql://h/db"}}})

	first, err := svc.Open("x")
	require.NoError(t, err)
	second, err := svc.Open("x")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestService_OpenUsesKeyring(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, config.StorePassword("vault", "pw"))

	svc, opened := newTestService(&config.Config{Targets: []config.Connection{
		{Name: "vault", Host: "db", Database: "app", Username: "svc"},
	}})

	_, err := svc.Open("vault")
	require.NoError(t, err)
	assert.Equal(t, []string{"postgresql://svc:pw@db/app"}, *opened)
}

func TestService_OpenErrors(t *testing.T) {
	svc, _ := newTestService(&config.Config{})

	_, err := svc.Open("")
	var cfgErr *ErrConfig
	assert.ErrorAs(t, err, &cfgErr)

	svc, _ = newTestService(&config.Config{Targets: []config.Connection{{Name: "a", URL: "postgresql://h/db"}}})
	_, err = svc.Open("b")
	var targetErr *ErrUnknownTarget
	require.ErrorAs(t, err, &targetErr)
	assert.Equal(t, "b", targetErr.Name)
	assert.False(t, svc.HasTarget("b"))
	assert.True(t, svc.HasTarget("a"))
}

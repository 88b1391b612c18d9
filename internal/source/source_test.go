package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Project(t *testing.T) {
	targets, err := Resolve(LevelProject, "278964", "state=opened")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, ScopeProject, targets[0].Scope)
	assert.Equal(t, "278964", targets[0].ID)
	assert.Equal(t, "state=opened", targets[0].Filter)
}

func TestResolve_Group(t *testing.T) {
	targets, err := Resolve(LevelGroup, "9970", "")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, ScopeGroup, targets[0].Scope)
	assert.Equal(t, "9970", targets[0].ID)
}

func TestResolve_Personal(t *testing.T) {
	targets, err := Resolve(LevelPersonal, "ignored", "scope=assigned_to_me")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, ScopePersonal, targets[0].Scope)
	assert.Empty(t, targets[0].ID)
	assert.Equal(t, "scope=assigned_to_me", targets[0].Filter)
}

func TestResolve_CustomPreservesOrder(t *testing.T) {
	targets, err := Resolve(LevelCustom, "P:123, G:45", "labels=bug")
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, RequestTarget{Scope: ScopeProject, ID: "123", Filter: "labels=bug"}, targets[0])
	assert.Equal(t, RequestTarget{Scope: ScopeGroup, ID: "45", Filter: "labels=bug"}, targets[1])
}

func TestResolve_CustomCaseInsensitivePrefix(t *testing.T) {
	targets, err := Resolve(LevelCustom, "g:1,p:2", "")
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, ScopeGroup, targets[0].Scope)
	assert.Equal(t, ScopeProject, targets[1].Scope)
}

func TestResolve_CustomUnknownPrefix(t *testing.T) {
	_, err := Resolve(LevelCustom, "P:1, X:2", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSourceSpec)
}

func TestResolve_CustomMissingColon(t *testing.T) {
	_, err := Resolve(LevelCustom, "123", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSourceSpec)
}

func TestResolve_CustomEmpty(t *testing.T) {
	_, err := Resolve(LevelCustom, " , ", "")
	assert.ErrorIs(t, err, ErrInvalidSourceSpec)
}

func TestResolve_UnknownLevel(t *testing.T) {
	_, err := Resolve("team", "1", "")
	assert.ErrorIs(t, err, ErrInvalidSourceSpec)
}

func TestResolve_Deterministic(t *testing.T) {
	first, err := Resolve(LevelCustom, "P:1, G:2, P:3", "f")
	require.NoError(t, err)
	second, err := Resolve(LevelCustom, "P:1, G:2, P:3", "f")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

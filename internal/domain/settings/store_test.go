package settings_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protrackhq/protrack/internal/domain/settings"
)

type recordingSaver struct {
	saves []settings.AISettings
}

func (r *recordingSaver) SaveAISettings(s settings.AISettings) {
	r.saves = append(r.saves, s)
}

func TestStore_DefaultsBeforeHydration(t *testing.T) {
	s := settings.NewStore(nil, nil)

	got := s.Settings()
	require.True(t, got.Enabled)
	require.Equal(t, settings.DefaultModel, got.Model)
}

func TestStore_ToggleEnabled(t *testing.T) {
	saver := &recordingSaver{}
	s := settings.NewStore(saver, nil)
	s.Hydrate(settings.Default())

	got := s.ToggleEnabled()
	require.False(t, got.Enabled)
	got = s.ToggleEnabled()
	require.True(t, got.Enabled)

	require.Len(t, saver.saves, 2)
	require.False(t, saver.saves[0].Enabled)
	require.True(t, saver.saves[1].Enabled)
}

func TestStore_SetModel(t *testing.T) {
	saver := &recordingSaver{}
	s := settings.NewStore(saver, nil)
	s.Hydrate(settings.Default())

	got := s.SetModel("gemini-2.5-pro")
	require.Equal(t, "gemini-2.5-pro", got.Model)
	require.Len(t, saver.saves, 1)
}

func TestStore_NoPersistBeforeHydration(t *testing.T) {
	saver := &recordingSaver{}
	s := settings.NewStore(saver, nil)

	s.ToggleEnabled()
	s.SetModel("gemini-2.5-pro")
	require.Empty(t, saver.saves)
}

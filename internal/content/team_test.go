// ABOUTME: Tests for team roster loading
// ABOUTME: Covers valid files, missing files, and malformed TOML

package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTeam_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[members]]
name = "Мария Иванова"
role_bg = "Председател"
role_en = "Chair"
class = "11Б"

[[members]]
name = "Георги Димитров"
role_bg = "Заместник-председател"
role_en = "Vice chair"
class = "10А"
`), 0644))

	team, err := LoadTeam(path)
	require.NoError(t, err)
	require.Len(t, team.Members, 2)
	assert.Equal(t, "Мария Иванова", team.Members[0].Name)
	assert.Equal(t, "Chair", team.Members[0].RoleEN)
	assert.Equal(t, "10А", team.Members[1].Class)
}

func TestLoadTeam_MissingFile(t *testing.T) {
	team, err := LoadTeam(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Empty(t, team.Members)
}

func TestLoadTeam_EmptyPath(t *testing.T) {
	team, err := LoadTeam("")
	require.NoError(t, err)
	assert.Empty(t, team.Members)
}

func TestLoadTeam_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[[members]`), 0644))

	_, err := LoadTeam(path)
	assert.Error(t, err)
}

// ABOUTME: Team roster loaded from a TOML content file
// ABOUTME: A missing file yields an empty roster, not an error

package content

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TeamMember is one entry on the team page
type TeamMember struct {
	Name   string `toml:"name"`
	RoleBG string `toml:"role_bg"`
	RoleEN string `toml:"role_en"`
	Class  string `toml:"class"`
	Photo  string `toml:"photo"`
	BioBG  string `toml:"bio_bg"`
	BioEN  string `toml:"bio_en"`
}

// Team is the council roster shown on the team page
type Team struct {
	Members []TeamMember `toml:"members"`
}

// LoadTeam reads the roster from the given TOML file. An empty path or a
// missing file yields an empty roster so the site works without one.
func LoadTeam(path string) (*Team, error) {
	if path == "" {
		return &Team{}, nil
	}

	var team Team
	if _, err := toml.DecodeFile(path, &team); err != nil {
		if os.IsNotExist(err) {
			return &Team{}, nil
		}
		return nil, fmt.Errorf("parsing team roster %s: %w", path, err)
	}

	return &team, nil
}

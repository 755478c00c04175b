package core

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationInfo describes the running instance.
type ApplicationInfo struct {
	Name     string    `json:"name"`
	Instance string    `json:"instance"`
	Profiles []string  `json:"profiles"`
	Started  time.Time `json:"started"`
}

// NewApplicationInfo assigns a random instance id.
func NewApplicationInfo(name string, profiles []string, started time.Time) *ApplicationInfo {
	if profiles == nil {
		profiles = []string{}
	}
	return &ApplicationInfo{
		Name:     name,
		Instance: uuid.NewString(),
		Profiles: profiles,
		Started:  started,
	}
}

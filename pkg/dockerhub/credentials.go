package dockerhub

import (
	dockerconfig "github.com/docker/cli/cli/config"
	"github.com/docker/docker/registry"
	"github.com/pkg/errors"
)

// Credentials are Docker Hub username and password (or access token).
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// DockerCLICredentials reads Docker Hub credentials stored by `docker login`.
// An empty configDir means the default docker config directory.
// Credential helpers configured in the file are used as well.
func DockerCLICredentials(configDir string) (Credentials, error) {
	if configDir == "" {
		configDir = dockerconfig.Dir()
	}

	cf, err := dockerconfig.Load(configDir)
	if err != nil {
		return Credentials{}, errors.Wrap(err, "failed to load docker config")
	}

	auth, err := cf.GetAuthConfig(registry.IndexServer)
	if err != nil {
		return Credentials{}, errors.Wrap(err, "failed to get docker hub credentials")
	}

	return Credentials{
		Username: auth.Username,
		Password: auth.Password,
	}, nil
}

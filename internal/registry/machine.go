package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
	"github.com/minimem/minimem/internal/utils"
)

const machineIDFile = "machine-id"

// MachineID returns a stable identifier for this machine, hashed with an
// app-specific key so it cannot be correlated across applications. When the
// OS machine id is unavailable, a generated uuid persisted under privateDir
// is used instead so the identity survives restarts.
func MachineID(privateDir string) (string, error) {
	id, err := machineid.ProtectedID("minimem")
	if err == nil && id != "" {
		return id, nil
	}

	fallbackPath := filepath.Join(privateDir, machineIDFile)
	if data, err := os.ReadFile(fallbackPath); err == nil {
		if stored := strings.TrimSpace(string(data)); stored != "" {
			return stored, nil
		}
	}

	generated := uuid.NewString()
	if err := utils.WriteFileAtomic(fallbackPath, []byte(generated+"\n"), 0o644); err != nil {
		return "", err
	}
	return generated, nil
}

package export

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"github.com/r3d91ll/relaxplot/pkg/layout"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// HashAlgorithm identifies the hashing algorithm used for script hashes.
const HashAlgorithm = "SHA-256"

// ManifestSuffix is appended to the script path to name its manifest.
const ManifestSuffix = ".manifest.json"

// Manifest records how a script was produced so it can be verified and
// regenerated later.
type Manifest struct {
	// RequestID is the export's unique identifier.
	RequestID string `json:"request_id"`

	// Backend is the canonical backend name.
	Backend string `json:"backend"`

	// Destination is where the script was written.
	Destination string `json:"destination"`

	// ScriptHash is the hex-encoded hash of the script text.
	ScriptHash string `json:"script_hash"`

	// Algorithm identifies the hashing algorithm used.
	Algorithm string `json:"algorithm"`

	// Grid and BarGrid are the panel arrangements of both figures.
	Grid    layout.Grid `json:"grid"`
	BarGrid layout.Grid `json:"bar_grid"`

	// Subplots is the number of rendered panels.
	Subplots int `json:"subplots"`

	// Lines is the number of script statements.
	Lines int `json:"lines"`

	// Residues and BarGroups count the input records.
	Residues  int `json:"residues"`
	BarGroups int `json:"bar_groups"`

	// Palette lists the declared colours as hex strings.
	Palette []string `json:"palette"`

	// Skipped lists the errors of groups left out of the script.
	Skipped []string `json:"skipped,omitempty"`

	// GeneratedAt is when the script was written (UTC).
	GeneratedAt time.Time `json:"generated_at"`
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first 8 characters of a hash.
func ShortHash(hash string) string {
	if len(hash) < 8 {
		return hash
	}
	return hash[:8]
}

// Verify reports whether data matches the recorded script hash.
func (m *Manifest) Verify(data []byte) bool {
	return m.ScriptHash == HashBytes(data)
}

// ManifestPath returns the manifest path for a script path.
func ManifestPath(scriptPath string) string {
	return scriptPath + ManifestSuffix
}

// WriteFile writes the manifest as indented JSON.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return werrors.Wrap(err, werrors.ErrInternalError, werrors.CategoryInternal,
			"failed to encode manifest")
	}
	return NewFileSink(path).Write(append(data, '\n'))
}

// ReadManifest loads a manifest written by WriteFile.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, werrors.WrapIO(err, werrors.ErrIOReadFailed, "failed to read manifest").
			WithContext("path", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, werrors.WrapIO(err, werrors.ErrIOReadFailed, "failed to decode manifest").
			WithContext("path", path)
	}
	return &m, nil
}

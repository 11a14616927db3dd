package syncstate

// FileStatus classifies a single file's sync situation from its local hash,
// remote hash and last-synced base hash. An empty hash means absent.
type FileStatus string

const (
	StatusUnchanged     FileStatus = "unchanged"
	StatusNewLocal      FileStatus = "new-local"
	StatusNewRemote     FileStatus = "new-remote"
	StatusLocalOnly     FileStatus = "local-only"
	StatusRemoteOnly    FileStatus = "remote-only"
	StatusDeletedLocal  FileStatus = "deleted-local"
	StatusDeletedRemote FileStatus = "deleted-remote"
	StatusConflict      FileStatus = "conflict"
)

// ClassifyFile is the three-way classification over three optional hashes.
// Unmatched combinations fall back to unchanged rather than manufacturing a
// conflict from missing data.
func ClassifyFile(localHash, remoteHash, lastSyncedHash string) FileStatus {
	// Both present and equal. Also covers both sides diverging to the same
	// new value through an out-of-band mechanism.
	if localHash != "" && remoteHash != "" && localHash == remoteHash {
		return StatusUnchanged
	}

	if lastSyncedHash == "" {
		// Never synced: there is no common ancestor to trust.
		switch {
		case localHash != "" && remoteHash == "":
			return StatusNewLocal
		case remoteHash != "" && localHash == "":
			return StatusNewRemote
		case localHash != "" && remoteHash != "":
			return StatusConflict
		}
		return StatusUnchanged
	}

	// Deletions: the surviving side must still match the synced base,
	// otherwise the combination is a delete+modify we do not arbitrate.
	if localHash == "" && remoteHash == lastSyncedHash {
		return StatusDeletedLocal
	}
	if remoteHash == "" && localHash == lastSyncedHash {
		return StatusDeletedRemote
	}

	localChanged := localHash != "" && localHash != lastSyncedHash
	remoteChanged := remoteHash != "" && remoteHash != lastSyncedHash

	// One-sided changes require the other side to still be present; an
	// absent side paired with a diverged one is a delete+modify we do not
	// arbitrate, so it falls to the conservative default.
	switch {
	case localChanged && !remoteChanged && remoteHash != "":
		return StatusLocalOnly
	case remoteChanged && !localChanged && localHash != "":
		return StatusRemoteOnly
	case localChanged && remoteChanged:
		// Same-value divergence was handled by the equality check above.
		return StatusConflict
	}

	return StatusUnchanged
}

// Policy is the resolution strategy seam: how per-file hashes map to a
// status. Selected once at configuration time so three-way and two-way
// deployments share a single classification path.
type Policy interface {
	Name() string
	Classify(localHash, remoteHash, lastSyncedHash string) FileStatus
}

// ThreeWay is the canonical policy: full three-way detection against the
// last-synced base, raising Conflict when both sides diverge.
type ThreeWay struct{}

func (ThreeWay) Name() string { return "three-way" }

func (ThreeWay) Classify(localHash, remoteHash, lastSyncedHash string) FileStatus {
	return ClassifyFile(localHash, remoteHash, lastSyncedHash)
}

// TwoWay ignores the synced base and never raises Conflict: when both sides
// hold differing content the local copy is treated as the change to push.
type TwoWay struct{}

func (TwoWay) Name() string { return "two-way" }

func (TwoWay) Classify(localHash, remoteHash, _ string) FileStatus {
	switch {
	case localHash == "" && remoteHash == "":
		return StatusUnchanged
	case localHash == remoteHash:
		return StatusUnchanged
	case localHash != "" && remoteHash == "":
		return StatusNewLocal
	case remoteHash != "" && localHash == "":
		return StatusNewRemote
	}
	return StatusLocalOnly
}

// PolicyByName resolves a configured policy name, defaulting to three-way.
func PolicyByName(name string) Policy {
	if name == "two-way" {
		return TwoWay{}
	}
	return ThreeWay{}
}

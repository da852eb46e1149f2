package ui

import "vidmatic/internal/session"

type snapshotMsg struct {
	Snap session.Snapshot
}

type trackerDoneMsg struct {
	Err error
}

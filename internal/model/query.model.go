package model

import (
	"strings"
	"time"
)

type Tab string

const (
	TabPending   Tab = "pending"
	TabCollected Tab = "collected"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// NotaQuery is everything the listing pipeline needs to narrow a collection.
// Now is injected so the collected visibility window is deterministic.
type NotaQuery struct {
	Tab    Tab
	Status string
	Search string
	Order  SortOrder
	Now    time.Time
	// WindowDays overrides the collected visibility window; 0 means 7.
	WindowDays int
}

func (q NotaQuery) Normalize() NotaQuery {
	if q.Tab != TabCollected {
		q.Tab = TabPending
	}
	if q.Order != SortDesc {
		q.Order = SortAsc
	}
	q.Status = strings.TrimSpace(q.Status)
	if strings.EqualFold(q.Status, StatusAll) {
		q.Status = ""
	}
	if q.Now.IsZero() {
		q.Now = time.Now()
	}
	return q
}

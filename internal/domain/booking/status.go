package booking

import "strings"

// Status is the booking state label used inside the engine.
type Status string

const (
	StatusPending   Status = "PENDIENTE"
	StatusConfirmed Status = "CONFIRMADA"
	StatusCancelled Status = "CANCELADA"
	StatusCompleted Status = "COMPLETADA"
)

// RemoteStatus is the booking state label used by the upstream API.
type RemoteStatus string

const (
	RemotePending   RemoteStatus = "PENDING"
	RemoteConfirmed RemoteStatus = "CONFIRMED"
	RemotePaid      RemoteStatus = "PAID"
	RemoteCanceled  RemoteStatus = "CANCELED"
	RemoteCompleted RemoteStatus = "COMPLETED"
)

// The mapping is lossy: PAID folds into CONFIRMADA and has no inverse.
var (
	toDomain = map[RemoteStatus]Status{
		RemotePending:   StatusPending,
		RemoteConfirmed: StatusConfirmed,
		RemotePaid:      StatusConfirmed,
		RemoteCanceled:  StatusCancelled,
		RemoteCompleted: StatusCompleted,
	}
	toRemote = map[Status]RemoteStatus{
		StatusPending:   RemotePending,
		StatusConfirmed: RemoteConfirmed,
		StatusCancelled: RemoteCanceled,
		StatusCompleted: RemoteCompleted,
	}
)

// Statuses lists the domain vocabulary in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
}

// ToDomain maps a remote label. Unknown labels pass through unchanged.
func ToDomain(remote RemoteStatus) Status {
	if s, ok := toDomain[remote]; ok {
		return s
	}
	return Status(remote)
}

// ToRemote maps a domain label back. ok is false when there is no remote
// equivalent; callers then send no status filter at all.
func ToRemote(status Status) (RemoteStatus, bool) {
	r, ok := toRemote[status]
	return r, ok
}

// ParseStatus accepts either vocabulary, case-insensitively, and returns the
// domain label. Empty input yields "".
func ParseStatus(raw string) Status {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if _, ok := toRemote[Status(raw)]; ok {
		return Status(raw)
	}
	return ToDomain(RemoteStatus(raw))
}

// Known reports whether s belongs to the domain vocabulary.
func (s Status) Known() bool {
	_, ok := toRemote[s]
	return ok
}

// Blocking reports whether a booking in this state holds its dates.
func (s Status) Blocking() bool {
	return s != StatusCancelled
}

// Normalize returns b with its status mapped into the domain vocabulary.
func Normalize(b Booking) Booking {
	if b.Status.Known() {
		return b
	}
	return b.WithStatus(ToDomain(RemoteStatus(b.Status)))
}

// NormalizeAll maps every status without touching the input slice.
func NormalizeAll(bookings []Booking) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, Normalize(b))
	}
	return out
}
